// Package cli wires flags, environment, and the dashboard together.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dicklesworthstone/cpugrid/internal/config"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInterrupted = 130
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo records build metadata injected via ldflags.
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

// runFunc starts the dashboard with a validated config.
type runFunc func(ctx context.Context, cfg config.Config, out io.Writer) error

func newRootCmd(run runFunc) *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)
	d := config.Default()

	cmd := &cobra.Command{
		Use:   "cpugrid",
		Short: "Live per-core CPU gauges in your terminal",
		Long: `cpugrid samples per-core and total CPU utilization and draws each core
as a gauge in a grid sized to the terminal. Cells past the last core show
the machine-wide average. Press q to quit.

Every flag can also be set from the environment, e.g. CPUGRID_WIDTH=8.

Examples:
  cpugrid
  cpugrid --width 8
  cpugrid --sim-core-count 64 --display-temperature`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.Bool(config.KeyDebug, d.Debug, "print diagnostics and counters on exit")
	f.IntP(config.KeyWidth, "w", d.Width, "minimum number of gauges per row")
	f.Int(config.KeySimCoreCount, d.SimCoreCount, "lay out this many cores instead of the detected count (0 = detect)")
	f.String(config.KeyCPUTin, d.CPUTin, "CPU temperature sensor label")
	f.String(config.KeySysTin, d.SysTin, "system temperature sensor label")
	f.Bool(config.KeyDisplayTemperature, d.DisplayTemperature, "append a full-width summary row (load, temperature)")
	f.Duration(config.KeyPollTimeout, d.PollTimeout, "how long each tick waits for a key; sets the refresh rate")
	f.String(config.KeyEdgePolicy, d.EdgePolicy.String(), "cells past the last core: fill | first-gap")
	f.Bool(config.KeyBorders, d.Borders, "draw borders around gauges")
	f.Int(config.KeyMaxProviderFailures, d.MaxProviderFailures, "consecutive sampling failures before exiting (0 = never)")
	f.String(config.KeyEngine, d.Engine, "front end: loop | tea")
	_ = v.BindPFlags(f)

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cpugrid %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(runDashboard)
	err := cmd.ExecuteContext(ctx)
	return report(os.Stdout, err)
}

// report prints err and maps it to an exit code.
func report(w io.Writer, err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, context.Canceled):
		fmt.Fprintln(w, "Interrupted.")
		return ExitInterrupted
	default:
		msg := err.Error()
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
		fmt.Fprint(w, msg)
		return ExitError
	}
}
