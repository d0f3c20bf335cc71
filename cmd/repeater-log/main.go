// Command repeater-log is a tool for viewing and analyzing repeater log files.
//
// Log files are created by running bonjour-repeater with the -log flag.
//
// Usage:
//
//	repeater-log <command> [flags] <file.rlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	repeater-log view repeater.rlog
//
//	# View only failures
//	repeater-log view --action repeat_failed repeater.rlog
//
//	# Export to JSONL
//	repeater-log export --format jsonl repeater.rlog
//
//	# Filter by instance and save to new file
//	repeater-log filter --instance "Printer A" -o filtered.rlog repeater.rlog
//
//	# Show statistics
//	repeater-log stats repeater.rlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ahesford/bonjour-repeater/cmd/repeater-log/commands"
)

const usage = `repeater-log - Bonjour Repeater Log Analyzer

Usage:
  repeater-log <command> [flags] <file.rlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "repeater-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `repeater-log view - View log file in human-readable format

Usage:
  repeater-log view [flags] <file.rlog>

Flags:
`)
		fs.PrintDefaults()
	}

	action := fs.String("action", "", "Filter by action (browse_started, repeat_started, repeat_stopped, repeat_skipped, repeat_failed, shutdown)")
	session := fs.String("session", "", "Filter by session ID")
	instance := fs.String("instance", "", "Filter by instance name")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	// Build filter
	filter := commands.ViewFilter{
		SessionID: *session,
		Instance:  *instance,
	}

	if *action != "" {
		a, err := commands.ParseActionFlag(*action)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Action = &a
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `repeater-log export - Export log file to JSON or CSV format

Usage:
  repeater-log export [flags] <file.rlog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `repeater-log filter - Filter log file and write to new file

Usage:
  repeater-log filter [flags] <file.rlog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	session := fs.String("session", "", "Filter by session ID")
	instance := fs.String("instance", "", "Filter by instance name")
	service := fs.String("service", "", "Filter by service type")
	action := fs.String("action", "", "Filter by action (browse_started, repeat_started, repeat_stopped, repeat_skipped, repeat_failed, shutdown)")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	opts := commands.FilterOptions{
		Output:    *output,
		SessionID: *session,
		Instance:  *instance,
		Service:   *service,
		Action:    *action,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
	}

	if err := commands.RunFilter(path, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `repeater-log stats - Show statistics about the log file

Usage:
  repeater-log stats <file.rlog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
