package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/sarchlab/csim/datarecording"
	"github.com/sarchlab/csim/mem/accesstrace"
	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/mem/trace"
	"github.com/sarchlab/csim/monitoring"
	"github.com/sarchlab/csim/report"
	"github.com/sarchlab/csim/sim/hooking"
)

func run(cmd *cobra.Command, o *options) error {
	err := o.validate()
	if err != nil {
		return err
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(cmd.ErrOrStderr()))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if o.verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	c := cache.MakeBuilder().
		WithGeometry(o.geometry()).
		WithStampPolicy(o.stampPolicy()).
		Build("Cache")

	counter := hooking.NewOutcomeCounter(cache.HookPosAccess)
	c.AcceptHook(counter)

	if o.verbose {
		out := log.NewLogfmtLogger(log.NewSyncWriter(cmd.OutOrStdout()))
		c.AcceptHook(trace.NewLogTracer(out))
	}

	if o.dbPath != "" {
		recorder := datarecording.New(o.dbPath)
		defer recorder.Close()

		c.AcceptHook(trace.NewDBTracer(recorder))
		level.Info(logger).Log("msg", "recording accesses", "db", o.dbPath)
	}

	var progress accesstrace.Progress

	if o.monitor {
		m := monitoring.NewMonitor().WithPortNumber(o.monitorPort)
		m.RegisterCache(c)
		url := m.StartServer()

		bar := m.CreateProgressBar(o.traceFile, 0)
		defer m.CompleteProgressBar(bar)
		progress = bar

		if o.openBrowser {
			err := monitoring.OpenInBrowser(url)
			if err != nil {
				level.Warn(logger).Log("msg", "cannot open browser", "err", err)
			}
		}
	}

	r, err := accesstrace.Open(o.traceFile)
	if err != nil {
		return err
	}
	defer r.Close()

	ctx, stop := signal.NotifyContext(
		contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := accesstrace.Replay(ctx, r, c, progress)
	if err != nil {
		return err
	}

	level.Debug(logger).Log("msg", "trace replayed",
		"trace", o.traceFile,
		"accesses", n,
		"geometry", formatGeometry(c.Geometry()),
		"stamps", c.StampPolicy())

	for _, tag := range counter.TagNames() {
		level.Debug(logger).Log("msg", "outcome", "tag", tag,
			"count", counter.Count(tag))
	}

	return writeReport(cmd, o, c.Finalize())
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

func formatGeometry(g cache.Geometry) string {
	return fmt.Sprintf("s=%d,E=%d,b=%d", g.Log2NumSets, g.NumWays, g.Log2BlockSize)
}

func writeReport(cmd *cobra.Command, o *options, stats cache.FinalStats) error {
	err := report.Summary(cmd.OutOrStdout(), stats)
	if err != nil {
		return err
	}

	if o.json {
		err = report.JSON(cmd.OutOrStdout(), stats)
		if err != nil {
			return err
		}
	}

	if o.resultsFile == "" {
		return nil
	}

	return report.WriteResultsFile(o.resultsFile, stats)
}
