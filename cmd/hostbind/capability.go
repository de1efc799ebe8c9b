package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <store> <key>",
	Short: "Look up a key in a config store",
	Long: `Open the named config store and print the value stored under key.

Prints "null" when the store has no such key.`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

var logCmd = &cobra.Command{
	Use:   "log <endpoint> <message...>",
	Short: "Write a message to a log endpoint",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runLog,
}

var objectCmd = &cobra.Command{
	Use:   "object",
	Short: "Read and write object stores",
}

var objectGetCmd = &cobra.Command{
	Use:   "get <store> <key>",
	Short: "Look up an object",
	Args:  cobra.ExactArgs(2),
	RunE:  runObjectGet,
}

var objectPutCmd = &cobra.Command{
	Use:   "put <store> <key> <value>",
	Short: "Store an object",
	Args:  cobra.ExactArgs(3),
	RunE:  runObjectPut,
}

func init() {
	objectCmd.AddCommand(objectGetCmd, objectPutCmd)
	rootCmd.AddCommand(getCmd, logCmd, objectCmd)
}

// withRequest runs fn inside a session that is handling a request.
func withRequest(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	s.rt.BeginRequest(s.ctx)
	err = fn(s)
	s.rt.EndRequest()
	if cerr := s.close(); err == nil {
		err = cerr
	}
	return err
}

// runScript runs src in a request and prints its completion value.
func runScript(cmd *cobra.Command, src string, globals map[string]any) error {
	return withRequest(cmd, func(s *session) error {
		v, err := s.run(src, globals)
		if err != nil {
			return err
		}
		if out := display(v); out != "" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		return nil
	})
}

func runGet(cmd *cobra.Command, args []string) error {
	return runScript(cmd, `new ConfigStore(storeName).get(key)`, map[string]any{
		"storeName": args[0],
		"key":       args[1],
	})
}

func runLog(cmd *cobra.Command, args []string) error {
	return runScript(cmd, `getLogger(endpoint).log(message)`, map[string]any{
		"endpoint": args[0],
		"message":  strings.Join(args[1:], " "),
	})
}

func runObjectGet(cmd *cobra.Command, args []string) error {
	return runScript(cmd, `new ObjectStore(storeName).lookup(key)`, map[string]any{
		"storeName": args[0],
		"key":       args[1],
	})
}

func runObjectPut(cmd *cobra.Command, args []string) error {
	return runScript(cmd, `new ObjectStore(storeName).put(key, value)`, map[string]any{
		"storeName": args[0],
		"key":       args[1],
		"value":     args[2],
	})
}
