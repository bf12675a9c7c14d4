package main

import (
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/deck-insight/internal/watch"
)

var watchFormat string

// watchCmd re-validates decklists as they change
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-validate decklists in a directory as they change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchFormat, "format", "", "format preset (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	_, opts := a.ValidateOptions(watchFormat, false, 0)
	w, err := watch.New(&watch.Config{
		Dir:        args[0],
		Extensions: a.Config.Watch.Extensions,
		Debounce:   a.Config.WatchDebounce(),
		Options:    opts,
		Logger:     a.Logger,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	results, err := w.Scan()
	if err != nil {
		return err
	}
	for _, r := range results {
		printWatchResult(out, r)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(ctx, func(r watch.Result) { printWatchResult(out, r) })
}

func printWatchResult(out io.Writer, r watch.Result) {
	name := filepath.Base(r.Path)
	if r.Err != nil {
		fmt.Fprintf(out, "%s: %v\n", name, r.Err)
		return
	}
	status := "valid"
	if !r.Validation.IsValid {
		status = fmt.Sprintf("%d errors", len(r.Validation.Errors))
	}
	fmt.Fprintf(out, "%s: %d cards, %s\n", name, r.Validation.TotalCards, status)
	printValidation(out, r.Validation)
}
