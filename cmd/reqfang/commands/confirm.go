package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ConfirmFunc answers a yes/no prompt. Injectable so tests never touch a
// real terminal.
type ConfirmFunc func(prompt string) bool

// StdinConfirm returns a ConfirmFunc that prompts on out and reads y/n
// answers from in, re-asking until it gets one.
func StdinConfirm(in io.Reader, out io.Writer) ConfirmFunc {
	reader := bufio.NewReader(in)

	return func(prompt string) bool {
		for {
			fmt.Fprintf(out, "%s (y/n): ", prompt)

			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				// EOF with no answer reads as a refusal.
				return false
			}

			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				return true
			case "n", "no":
				return false
			}

			fmt.Fprintln(out, "Please enter 'y' for yes or 'n' for no.")
		}
	}
}
