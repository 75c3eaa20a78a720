// Command spacer searches the NASA Image and Video Library and decodes saved
// search responses.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacerhq/spacer"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "search":
		return searchCmd(ctx, args[1:], stdout, stderr)
	case "decode":
		return decodeCmd(ctx, args[1:], stdin, stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, "spacer", version)
		return 0
	default:
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "spacer CLI\n\nUsage:\n  spacer search [-config spacer.yaml] [-q text] [-o table|json|yaml] [-pages n] [-markdown]\n  spacer decode [-keys data,item] [-o table|json|yaml] [file.json]\n  spacer version\n\nRun a subcommand with -h for all flags. Settings also come from SPACER_* variables and .env.")
}

func fatalf(w io.Writer, format string, a ...any) int {
	fmt.Fprintf(w, "spacer: "+format+"\n", a...)
	return 1
}

// reportErr prints err, followed by one localized line per structural issue
// it carries.
func reportErr(w io.Writer, err error) int {
	fmt.Fprintf(w, "spacer: %v\n", err)
	if iss, ok := spacer.AsIssues(err); ok {
		for _, line := range iss.Localized() {
			fmt.Fprintf(w, "  - %s\n", line)
		}
	}
	return 1
}
