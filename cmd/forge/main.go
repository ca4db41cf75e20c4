package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const version = "0.1.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := os.Args[1:]
	cmd := "process"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "process":
		err = runProcessCmd(ctx, args)
	case "issue":
		err = runIssueCmd(ctx, args)
	case "jules":
		err = runJulesCmd(ctx, args)
	case "mcp":
		err = runMCPCmd(ctx, args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: forge [command] [flags]

Commands:
  process  Turn feedback into a developer prompt and run the configured follow-ups (default)
  issue    Create a GitHub issue in the configured repository
  jules    Start a Jules session on the configured repository
  mcp      Serve the forge tools over MCP on stdio

Run "forge <command> -h" for command flags.
`)
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	config  string
	env     string
	verbose bool
}

func newFlagSet(name, summary string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: forge %s [flags]\n\n%s\n\nFlags:\n", name, summary)
		fs.PrintDefaults()
	}

	c := &commonFlags{}
	fs.StringVar(&c.config, "config", "", "path to configuration file (default: forge.yaml if present)")
	fs.StringVar(&c.env, "env", ".env", "path to .env file (ignored if missing)")
	fs.BoolVar(&c.verbose, "v", false, "enable debug logging")

	return fs, c
}
