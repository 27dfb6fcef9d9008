package main

import (
	"os"
	"strconv"
	"strings"

	"shop-cli/internal/cli"
)

// Commands whose first argument is a 1-based index.
var indexCommands = map[string]bool{
	"rm":     true,
	"remove": true,
	"delete": true,
	"edit":   true,
}

var categoryCommands = map[string]bool{
	"category":   true,
	"categories": true,
	"cat":        true,
}

func isNegativeNumber(s string) bool {
	if !strings.HasPrefix(s, "-") {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

func rewriteNegativeIndexArgs(argv []string) []string {
	// `shop rm -1` would otherwise fail as an unknown shorthand flag. Inserting "--" lets the
	// command report the index itself as invalid.
	//
	// Persistent flags may come first (`shop -l Family rm -1`), so find the command word
	// instead of looking at argv[1]. Flags after the index (`category edit -1 --name x`) are
	// moved in front of the "--" so they are still parsed as flags.
	if len(argv) < 3 {
		return argv
	}

	valueFlags := map[string]bool{
		"--server": true, "-s": true,
		"--list": true, "-l": true,
		"--proxy": true, "-p": true,
		"--username": true, "-u": true,
		"--format":   true,
		"--ansi":     true,
		"--env-file": true,
		"--width":    true,
		"--name":     true,
		"--short":    true,
		"--color":    true,
		"--style":    true,
	}

	inCategory := false
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") {
				continue
			}
			if valueFlags[a] {
				i++ // skip value if present
			}
			continue
		}

		if !inCategory && categoryCommands[a] {
			inCategory = true
			continue
		}
		if !indexCommands[a] {
			return argv
		}
		if i+1 < len(argv) && isNegativeNumber(argv[i+1]) {
			flags, positional := splitFlags(argv[i+2:], valueFlags)
			out := make([]string, 0, len(argv)+1)
			out = append(out, argv[:i+1]...)
			out = append(out, flags...)
			out = append(out, "--", argv[i+1])
			out = append(out, positional...)
			return out
		}
		return argv
	}

	return argv
}

// splitFlags separates flags (with their values) from positional arguments, keeping the
// order within each group. Everything after a "--" is positional.
func splitFlags(args []string, valueFlags map[string]bool) (flags, positional []string) {
	for j := 0; j < len(args); j++ {
		a := args[j]
		if a == "--" {
			positional = append(positional, args[j+1:]...)
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" || isNegativeNumber(a) {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if !strings.Contains(a, "=") && valueFlags[a] && j+1 < len(args) {
			j++
			flags = append(flags, args[j])
		}
	}
	return flags, positional
}

func main() {
	os.Args = rewriteNegativeIndexArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
