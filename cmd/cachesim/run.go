package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/record"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

// envFile is loaded from the working directory when present.
const envFile = ".env"

// session is the state shared by the commands that take the classic
// options.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer

	stopProfiles func() error
	monitor      *monitoring.Monitor
	progress     *monitoring.ProgressBar
}

// newSession parses the classic options. It prints the usage text and
// returns errUsage when no trace is given.
func newSession(pname string, args []string, stdout, stderr io.Writer) (*session, error) {
	if len(args) == 0 || config.IsHelp(args) {
		printUsage(stdout, pname)

		if len(args) == 0 {
			return nil, errUsage
		}

		return nil, nil
	}

	cfg, warnings, err := config.Load(args, envFile)
	if err != nil {
		return nil, err
	}

	logger := sim.NewLogger(stderr, cfg.Verbose)

	for _, w := range warnings {
		if w.Reason == "unrecognized option" {
			fmt.Fprintf(stdout, "Ignoring unrecognized option: %s\n", w.Option)
			continue
		}

		logger.Warn("ignoring option",
			"option", w.Option, "value", w.Value, "reason", w.Reason)
	}

	if cfg.TracePath == "" {
		printUsage(stdout, pname)
		return nil, errUsage
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		logger: logger,
		stdout: stdout,
	}

	s.stopProfiles, err = startProfiles(cfg.CPUProfile, cfg.MemProfile)
	if err != nil {
		return nil, err
	}

	if cfg.Monitor {
		if err := s.startMonitor(); err != nil {
			_ = s.stopProfiles()
			return nil, err
		}
	}

	return s, nil
}

func (s *session) startMonitor() error {
	s.monitor = monitoring.NewMonitor().
		WithLogger(s.logger).
		WithPortNumber(s.cfg.MonitorPort)
	s.progress = s.monitor.CreateProgressBar(s.cfg.TracePath, 0)

	url, err := s.monitor.StartServer()
	if err != nil {
		return err
	}

	if s.cfg.OpenBrowser {
		if err := monitoring.OpenInBrowser(url); err != nil {
			s.logger.Warn("failed to open browser", "error", err)
		}
	}

	return nil
}

// options returns the simulator options of the session.
func (s *session) options() []sim.Option {
	opts := []sim.Option{
		sim.WithName(s.cfg.TracePath),
		sim.WithLogger(s.logger),
	}

	if s.progress != nil {
		opts = append(opts, sim.WithProgress(s.progress))
	}

	return opts
}

func (s *session) close() error {
	if s.monitor != nil {
		s.monitor.CompleteProgressBar(s.progress)
		_ = s.monitor.StopServer()
	}

	return s.stopProfiles()
}

// openTrace opens the trace of the session.
func (s *session) openTrace(ctx context.Context) (*trace.Reader, io.Closer, error) {
	rc, err := trace.Open(ctx, s.cfg.TracePath)
	if err != nil {
		return nil, nil, err
	}

	return trace.NewReader(rc), rc, nil
}

// checkRunError turns a malformed record into a warning. The records read
// before it still count.
func (s *session) checkRunError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, trace.ErrMalformedRecord) {
		s.logger.Warn("stopped reading trace", "error", err)
		return nil
	}

	return err
}

// runLegacy runs one simulation with the classic options.
func runLegacy(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	s, err := newSession("cachesim", args, stdout, stderr)
	if s == nil || err != nil {
		return err
	}

	defer func() {
		if cerr := s.close(); err == nil {
			err = cerr
		}
	}()

	cacheConfig := s.cfg.CacheConfig()

	if !s.cfg.JSON {
		sim.PrintBanner(stdout, s.cfg.TracePath, cacheConfig)
	}

	reader, closer, err := s.openTrace(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	opts := s.options()

	var recorder *record.Recorder
	if s.cfg.RecordPath != "" {
		recorder, err = record.New(s.cfg.RecordPath)
		if err != nil {
			return err
		}

		opts = append(opts, sim.WithHooks(recorder))
	}

	simulator := sim.New(cacheConfig, opts...)

	res, err := simulator.Run(ctx, reader)
	if err := s.checkRunError(err); err != nil {
		return err
	}

	if recorder != nil {
		if err := finishRecording(recorder, s.cfg.TracePath, cacheConfig, res); err != nil {
			return err
		}

		s.logger.Info("recorded run", "database", recorder.Path())
	}

	return s.report(simulator.Cache(), res)
}

func (s *session) report(c *cache.Cache, res sim.Result) error {
	if s.cfg.Dump {
		if err := c.Dump(s.stdout); err != nil {
			return err
		}
	}

	if s.cfg.JSON {
		return sim.WriteJSON(s.stdout, res)
	}

	sim.PrintSummary(s.stdout, res)

	if s.cfg.Verbose {
		sim.PrintDetails(s.stdout, res)
	}

	return nil
}

func finishRecording(
	r *record.Recorder,
	tracePath string,
	cfg cache.Config,
	res sim.Result,
) error {
	_, err := r.RecordRun(record.RunSummary{
		Trace:     tracePath,
		Config:    cfg,
		Accesses:  res.Accesses,
		Misses:    res.Misses,
		Evictions: res.Evictions,
	})
	if err != nil {
		_ = r.Close()
		return err
	}

	return r.Close()
}
