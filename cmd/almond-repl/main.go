package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/mpkocher/almond/interp"
	"github.com/mpkocher/almond/kernel"
)

func main() {
	var (
		expr     = flag.String("e", "", "Evaluate one submission and exit")
		debugLog = flag.String("debug", "", "Write debug logs to this file")
	)
	flag.Parse()

	if *debugLog != "" {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{*debugLog}
		logger, err := cfg.Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open debug log: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		kernel.SetLogger(logger.Named("kernel"))
		interp.SetLogger(logger.Named("interp"))
	}

	if *expr != "" {
		if err := runOnce(*expr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Usage: almond-repl [-e code] [-debug file]")
		fmt.Fprintln(os.Stderr, "       almond-repl  (interactive, requires a terminal)")
		os.Exit(1)
	}

	if err := runInteractive(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// passthroughSink prints captured output directly, for one-shot mode.
type passthroughSink struct{}

func (passthroughSink) Stdout(text string) { fmt.Print(text) }
func (passthroughSink) Stderr(text string) { fmt.Fprint(os.Stderr, text) }

func runOnce(code string) error {
	k, err := kernel.New(interp.New())
	if err != nil {
		return err
	}

	res, err := k.Execute(context.Background(), code, kernel.WithOutput(passthroughSink{}))
	if err != nil {
		return err
	}
	if res.Payload.Text != "" {
		fmt.Println(res.Payload.Text)
	}
	if res.Err != nil {
		os.Exit(1)
	}
	return nil
}
