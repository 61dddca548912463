package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/OCAP2/hunter/internal/config"
	"github.com/OCAP2/hunter/internal/hunting"
	"github.com/OCAP2/hunter/internal/logging"
	intOtel "github.com/OCAP2/hunter/internal/otel"
	"github.com/OCAP2/hunter/internal/scheduler"
	"github.com/OCAP2/hunter/internal/sim"
	"github.com/OCAP2/hunter/internal/storage"
	"github.com/OCAP2/hunter/pkg/core"
)

const appName = "hunter"

// shutdownTimeout bounds the final OTel flush.
const shutdownTimeout = 5 * time.Second

type runOptions struct {
	configDir string
	cycles    int
	seed      int64
	seedSet   bool
	noWait    bool
	verbose   bool
}

func newRunCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the hunting task against the simulated world",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seedSet = cmd.Flags().Changed("seed")
			return runHunter(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.configDir, "config", "c", ".", "Directory containing "+config.FileName)
	cmd.Flags().IntVarP(&opts.cycles, "cycles", "n", 0, "Stop after this many scheduler polls (0 runs until interrupted)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "Seed for the world and the task (overrides sim.seed)")
	cmd.Flags().BoolVar(&opts.noWait, "no-wait", false, "Skip the delays returned by the scheduler")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Mirror scheduler logs to stderr")

	return cmd
}

func runHunter(ctx context.Context, opts runOptions, out, errOut io.Writer) (err error) {
	if loadErr := config.Load(opts.configDir); loadErr != nil {
		fmt.Fprintf(errOut, "%v; using defaults\n", loadErr)
	}

	sessionStart := time.Now()
	logFile, logPath, err := logging.OpenSessionLog(config.GetString("logsDir"), appName, sessionStart)
	if err != nil {
		return err
	}
	defer logFile.Close()

	level := config.GetString("logLevel")

	otelCfg := config.GetOTelConfig()
	provider, err := intOtel.New(intOtel.Config{
		Enabled:        otelCfg.Enabled,
		ServiceName:    otelCfg.ServiceName,
		ServiceVersion: version,
		BatchTimeout:   otelCfg.BatchTimeout,
		LogWriter:      logFile,
		Endpoint:       otelCfg.Endpoint,
		Insecure:       otelCfg.Insecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize OTel provider: %w", err)
	}

	// set once the task exists; read by the log context handler
	var current atomic.Pointer[hunting.Task]

	slogManager := logging.NewSlogManager()
	if gc := config.GetGraylogConfig(); gc.Enabled {
		if err := slogManager.ConnectGraylog(gc.Address); err != nil {
			fmt.Fprintf(errOut, "graylog disabled: %v\n", err)
		}
	}
	slogManager.Context = func() []slog.Attr {
		t := current.Load()
		if t == nil {
			return nil
		}
		return []slog.Attr{slog.Int("tracked", t.Ledger().Len())}
	}
	slogManager.Setup(logFile, level, provider.LoggerProvider())
	log := slogManager.Logger()
	log.Info("Logging to file", "path", logPath, "version", version, "otel", provider.Enabled())

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = multierr.Combine(err,
			slogManager.Flush(shutdownCtx),
			provider.Shutdown(shutdownCtx),
			slogManager.Close(),
		)
	}()

	schedWriters := []io.Writer{logFile}
	if opts.verbose {
		schedWriters = append(schedWriters, errOut)
	}
	mgr, err := scheduler.New(logging.NewSchedulerLogger(logging.NewConsoleLogger(level, "scheduler", schedWriters...)))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	storageCfg := config.GetStorageConfig()
	backend, err := storage.NewBackend(storageCfg, log)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize %s journal: %w", storageCfg.Type, err)
	}
	journal := storage.NewJournal(backend, log)
	defer func() {
		err = multierr.Append(err, journal.Close())
		if exp, ok := backend.(storage.Exportable); ok && exp.ExportPath() != "" {
			fmt.Fprintf(out, "journal exported to %s\n", exp.ExportPath())
		}
	}()

	simCfg := config.GetSimConfig()
	if opts.seedSet {
		simCfg.Seed = opts.seed
	}
	rng := rand.New(rand.NewSource(simCfg.Seed))

	hunterCfg := config.GetHunterConfig()
	taskCfg, err := buildTaskConfig(hunterCfg, rng)
	if err != nil {
		return fmt.Errorf("invalid hunter configuration: %w", err)
	}
	worldCfg, err := buildWorld(simCfg, taskCfg.TrapItem, taskCfg.Zones)
	if err != nil {
		return fmt.Errorf("invalid sim configuration: %w", err)
	}
	world := sim.New(worldCfg)

	task, err := hunting.New(taskCfg, hunting.Dependencies{
		Inventory:  world,
		Locator:    world,
		Mover:      world,
		Interactor: world,
		Restocker:  world,
		Recorder:   journal,
		Rand:       rng,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	current.Store(task)
	mgr.Register(task)

	log.Info("Hunting started",
		"task", task.Name(),
		"strategy", task.Strategy().Description(),
		"zones", len(task.Zones()),
		"storage", storageCfg.Type,
		"seed", simCfg.Seed)

	polls := loop(ctx, opts, world, mgr)
	log.Info("Hunting stopped", "polls", polls, "reason", stopReason(ctx))

	return printSummary(out, task, world, journal, polls)
}

// loop polls the scheduler until ctx ends or the cycle limit is reached.
func loop(ctx context.Context, opts runOptions, world *sim.World, mgr *scheduler.Manager) int {
	polls := 0
	for opts.cycles <= 0 || polls < opts.cycles {
		if ctx.Err() != nil {
			return polls
		}
		world.Tick()
		delay := mgr.ExecuteNextTask(ctx)
		polls++

		if opts.noWait || (opts.cycles > 0 && polls == opts.cycles) {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return polls
		case <-timer.C:
		}
	}
	return polls
}

func stopReason(ctx context.Context) string {
	if ctx.Err() != nil {
		return "interrupted"
	}
	return "cycle limit"
}

func printSummary(out io.Writer, task *hunting.Task, world *sim.World, journal *storage.Journal, polls int) error {
	summary, err := journal.Summary()
	if err != nil {
		return fmt.Errorf("failed to read journal summary: %w", err)
	}
	stats := world.Stats()

	kinds := make([]core.EventKind, 0, len(summary.ByKind))
	for k := range summary.ByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "task\t%s\n", task.Name())
	fmt.Fprintf(tw, "strategy\t%s\n", task.Strategy().Name())
	fmt.Fprintf(tw, "polls\t%d\n", polls)
	fmt.Fprintf(tw, "tracked\t%d/%d\n", task.Ledger().Len(), task.Ledger().Capacity())
	fmt.Fprintf(tw, "caught\t%d\n", stats.Caught)
	fmt.Fprintf(tw, "moves\t%d (%d failed)\n", stats.Moves, stats.FailedMoves)
	fmt.Fprintf(tw, "events\t%d\n", summary.Total)
	for _, k := range kinds {
		fmt.Fprintf(tw, "  %s\t%d\n", k, summary.ByKind[k])
	}
	return tw.Flush()
}
