package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// errNoProblem is a usage error: the council needs something to discuss.
var errNoProblem = errors.New(`problem statement cannot be empty

Usage:
  council "your problem statement"
  echo "your problem" | council
  council          (interactive)`)

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// readProblem resolves the problem statement from args, piped input, or an
// interactive prompt that ends at a blank line following text (or EOF).
func readProblem(args []string, lines *bufio.Scanner, interactive bool, r *renderer) (string, error) {
	if problem := strings.TrimSpace(strings.Join(args, " ")); problem != "" {
		return problem, nil
	}

	if !interactive {
		var parts []string
		for lines.Scan() {
			parts = append(parts, lines.Text())
		}
		if err := lines.Err(); err != nil {
			return "", err
		}
		if problem := strings.TrimSpace(strings.Join(parts, "\n")); problem != "" {
			return problem, nil
		}
		return "", errNoProblem
	}

	r.printf("%s\n", r.heading.Render("Enter your problem statement:"))
	r.notice("(Press Enter on an empty line or Ctrl+D to finish)")

	var parts []string
	for lines.Scan() {
		line := lines.Text()
		if strings.TrimSpace(line) == "" && len(parts) > 0 {
			break
		}
		parts = append(parts, line)
	}

	if problem := strings.TrimSpace(strings.Join(parts, "\n")); problem != "" {
		return problem, nil
	}

	return "", errNoProblem
}
