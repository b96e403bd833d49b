package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Dicklesworthstone/cpugrid/internal/config"
	"github.com/Dicklesworthstone/cpugrid/internal/input"
	"github.com/Dicklesworthstone/cpugrid/internal/logger"
	"github.com/Dicklesworthstone/cpugrid/internal/loop"
	"github.com/Dicklesworthstone/cpugrid/internal/render"
	"github.com/Dicklesworthstone/cpugrid/internal/sampler"
	"github.com/Dicklesworthstone/cpugrid/internal/session"
	"github.com/Dicklesworthstone/cpugrid/internal/ui"
)

// deps are the pieces that touch the real machine.
type deps struct {
	provider  sampler.Provider
	backend   session.Backend
	openInput loop.InputOpener
	stderr    io.Writer
	runTea    func(ctx context.Context, l *loop.Loop) error
}

func systemDeps() deps {
	return deps{
		provider: sampler.NewSystemProvider(),
		backend:  session.NewTTY(),
		openInput: func() (loop.PollCloser, error) {
			return input.NewReader(os.Stdin)
		},
		stderr: os.Stderr,
		runTea: ui.RunTUI,
	}
}

func runDashboard(ctx context.Context, cfg config.Config, out io.Writer) error {
	return run(ctx, cfg, out, systemDeps())
}

// run detects cores, plans the grid, and hands the terminal to the chosen
// front end. Anything logged while the terminal is held is buffered and
// written to stderr once it has been released.
func run(ctx context.Context, cfg config.Config, out io.Writer, d deps) error {
	errLog := logger.New(d.stderr, "[cpugrid]", cfg.Debug)
	buf := logger.NewBufferLogger()

	s := sampler.New(d.provider,
		sampler.WithCoreCount(cfg.SimCoreCount),
		sampler.WithSensorLabels(cfg.CPUTin, cfg.SysTin),
	)
	cores, err := s.CoreCount(ctx)
	if err != nil {
		return err
	}

	border := render.BorderAll
	if !cfg.Borders {
		border = render.BorderNone
	}
	l, err := loop.New(loop.Options{
		CoreCount:           cores,
		Width:               cfg.Width,
		ExtraRows:           cfg.ExtraRows(),
		PollTimeout:         cfg.PollTimeout,
		Border:              border,
		Policy:              cfg.EdgePolicy,
		MaxProviderFailures: cfg.MaxProviderFailures,
	}, s, buf)
	if err != nil {
		return err
	}

	switch cfg.Engine {
	case config.EngineTea:
		err = d.runTea(ctx, l)
	default:
		err = loop.RunSession(ctx, d.backend, l, d.openInput)
	}

	buf.Replay(errLog, cfg.Debug)
	if err == nil {
		fmt.Fprintln(out, "Exiting")
	}
	if cfg.Debug {
		fmt.Fprintf(out, "state=%s %s\n", l.State(), l.Stats())
	}
	return err
}
