// Command transcache runs the caching translation service and its tools.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ZaguanLabs/transcache"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = transcache.Version
	commit    = transcache.GitCommit
	buildDate = transcache.BuildDate
)

const usage = `Usage: transcache <command> [flags]

Commands:
  serve       Run the HTTP API
  translate   Translate one text and print the result
  stats       Print cache statistics
  token       Issue a bearer token for a user (development)
  version     Print version information

Run "transcache <command> --help" for command flags.
`

var errUsage = errors.New("unknown or missing command")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve":
		return runServe(rest, stdout, stderr)
	case "translate":
		return runTranslate(rest, stdout, stderr)
	case "stats":
		return runStats(rest, stdout, stderr)
	case "token":
		return runToken(rest, stdout, stderr)
	case "version", "--version", "-version":
		printVersion(stdout)
		return nil
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w: %q", errUsage, cmd)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", transcache.Name, version)
	if commit != "unknown" && commit != "" {
		fmt.Fprintf(w, "  commit:  %s\n", commit)
	}
	if buildDate != "unknown" && buildDate != "" {
		fmt.Fprintf(w, "  built:   %s\n", buildDate)
	}
}
