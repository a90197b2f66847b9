package main

import (
	"os"
	"strconv"
	"strings"

	"issuetrack/internal/cli"
)

func isIssueID(s string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil && n > 0
}

// rewriteDirectIssueLookupArgs makes `issuetrack <id>` work like
// `issuetrack issues show <id>`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
// before parsing. Persistent flags may come first (`issuetrack --api ... 42`), so
// this looks for the first positional token rather than argv[1].
func rewriteDirectIssueLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--api":    true,
		"--config": true,
		"--format": true,
	}

	insertAt := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "issues", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isIssueID(argv[i+1]) {
				return insertAt(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			// Unknown flags are skipped without their value so an id is never swallowed.
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}

		if isIssueID(a) {
			return insertAt(i)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectIssueLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		cli.ReportError(os.Stderr, err)
		os.Exit(1)
	}
}
