// Package main is the entry point for the drawstorm script runner.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/tidwall/pretty"

	"github.com/dshills/drawstorm/internal/app"
	"github.com/dshills/drawstorm/internal/engine/history"
	"github.com/dshills/drawstorm/internal/engine/scene"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// cliOptions holds flags that do not belong to app.Options.
type cliOptions struct {
	name    string
	export  bool
	undo    int
	scripts []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, cli := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	doc, err := application.OpenDocument(ctx, scene.WithName(cli.name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	for _, path := range cli.scripts {
		if err := application.RunScriptFile(ctx, doc.ID(), path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	for i := 0; i < cli.undo && doc.CanUndo(); i++ {
		if err := doc.Undo(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: undo: %v\n", err)
			return 1
		}
	}

	printHistory(os.Stdout, doc)

	if cli.export {
		if err := printExport(os.Stdout, doc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: export: %v\n", err)
			return 1
		}
	}
	return 0
}

func parseFlags() (app.Options, cliOptions) {
	var opts app.Options
	var cli cliOptions
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.DurationVar(&opts.ScriptTimeout, "timeout", app.DefaultScriptTimeout, "Time limit for each script")
	flag.StringVar(&cli.name, "name", "Untitled", "Document name")
	flag.BoolVar(&cli.export, "json", false, "Print the resulting document as JSON")
	flag.IntVar(&cli.undo, "undo", 0, "Undo this many steps after the scripts ran")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "drawstorm - run Lua edit scripts against a diagram document\n\n")
		fmt.Fprintf(os.Stderr, "Usage: drawstorm [options] [scripts...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  drawstorm layout.lua              Run a script, print the history\n")
		fmt.Fprintf(os.Stderr, "  drawstorm -json a.lua b.lua       Run two scripts, print the document\n")
		fmt.Fprintf(os.Stderr, "  drawstorm -undo 1 -json edit.lua  Run a script, then undo one step\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("drawstorm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	// Validate log level
	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
		// Valid
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	cli.scripts = flag.Args()
	return opts, cli
}

// printHistory writes the undo stack oldest first, then the redo stack.
func printHistory(w io.Writer, doc *scene.Document) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "#\tKIND\tHOST\tDESCRIPTION\n")
	row := func(mark string, info history.OperationInfo) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, info.Kind, info.Host, info.Description)
	}
	for i, info := range doc.UndoInfo() {
		row(fmt.Sprint(i+1), info)
	}
	for _, info := range doc.RedoInfo() {
		row("redo", info)
	}
}

func printExport(w io.Writer, doc *scene.Document) error {
	rec, err := doc.Export()
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = w.Write(pretty.Pretty(data))
	return err
}
