package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/caffeineduck/hostbind/hostcall"
)

var statusCmd = &cobra.Command{
	Use:   "status [code]",
	Short: "Explain host status codes",
	Long: `Print the host status taxonomy, or the error a given status code
produces for a method call.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the host operations and stores the platform serves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, op := range s.registry.List() {
			fmt.Fprintln(out, op)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "config stores: %s\n", joinSorted(s.platform.Dictionaries.Names()))
		fmt.Fprintf(out, "object stores: %s\n", joinSorted(s.platform.Objects.Names()))
		return s.close()
	},
}

func joinSorted(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func init() {
	statusCmd.Flags().String("method", "get", "Method name used in the rendered error")
	rootCmd.AddCommand(statusCmd, opsCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 1 {
		code, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid status code %q", args[0])
		}
		method, _ := cmd.Flags().GetString("method")
		if err := hostcall.Translate(method, hostcall.Status(code)); err != nil {
			fmt.Fprintln(out, err)
		} else {
			fmt.Fprintln(out, "ok")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tMEANING")
	for _, s := range hostcall.Statuses() {
		desc := s.Description()
		if s == hostcall.StatusOK {
			desc = "Success."
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", uint32(s), s, desc)
	}
	return w.Flush()
}
