package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive script session against the capabilities",
	Long: `Start an interactive script session with the capabilities installed.

Example:
  > const store = new ConfigStore("settings")
  > store.get("greeting")
  hello
  > getLogger("access").log("hello world")

Features:
  - Command history (up/down arrows)
  - Line editing (left/right, backspace, delete)
  - History search (Ctrl+R)
  - Multi-line input (end line with \)

The session handles a request unless --init is set, in which case
request-only types can't be constructed. Type 'exit' or 'quit' to end
the session, or press Ctrl+D.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	replCmd.Flags().Bool("init", false, "Stay in initialization mode (no request)")
	replCmd.Flags().String("history", "", "History file path (default: ~/.hostbind_history)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	initMode, _ := cmd.Flags().GetBool("init")
	historyFile, _ := cmd.Flags().GetString("history")
	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".hostbind_history")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	if !initMode {
		s.rt.BeginRequest(s.ctx)
		defer s.rt.EndRequest()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(cmd.ErrOrStderr(), "hostbind REPL (type 'exit' to quit, Ctrl+D to exit)")
	return replLoop(s, rl, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// lineReader is the part of *readline.Instance the loop needs.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// replLoop reads lines until EOF or exit, runs each one and prints its
// value. A line ending in a backslash continues on the next line.
func replLoop(s *session, rl lineReader, stdout, stderr io.Writer) error {
	var multiLine strings.Builder
	inMultiLine := false

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if inMultiLine {
					multiLine.Reset()
					inMultiLine = false
					rl.SetPrompt("> ")
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(stdout)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.HasSuffix(line, "\\") {
			multiLine.WriteString(strings.TrimSuffix(line, "\\"))
			multiLine.WriteString("\n")
			inMultiLine = true
			rl.SetPrompt("... ")
			continue
		}

		if inMultiLine {
			multiLine.WriteString(line)
			line = multiLine.String()
			multiLine.Reset()
			inMultiLine = false
			rl.SetPrompt("> ")
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		v, err := s.vm.RunString(line)
		if err != nil {
			fmt.Fprintln(stderr, uncaught(err))
			continue
		}
		if out := display(v); out != "" {
			fmt.Fprintln(stdout, out)
		}
	}
}
