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

	"github.com/storepulse/storepulse/cmd/storepulsectl/cli"
	"github.com/storepulse/storepulse/internal/app"
	"github.com/storepulse/storepulse/internal/platform/db"
	"github.com/storepulse/storepulse/internal/platform/migrate"
	"github.com/storepulse/storepulse/migrations"
)

const usage = `usage:
  storepulsectl kpi --input batch.json [--previous prev.json] [--baseline base.json] [--today YYYY-MM-DD] [--end YYYY-MM-DD] [--json]
  storepulsectl jobs trigger kpi:warmup [--store ID] [--date YYYY-MM-DD]
  storepulsectl jobs stats [--json]
  storepulsectl migrate up|down|status|version|validate
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	switch args[0] {
	case "kpi":
		return runKPI(args[1:], stdout, stderr)
	case "jobs":
		return runJobs(ctx, args[1:], stdout, stderr)
	case "migrate":
		return runMigrate(ctx, args[1:], stdout, stderr)
	default:
		fmt.Fprint(stderr, usage)
		return 2
	}
}

func runKPI(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("kpi", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := cli.KPIOptions{Stdout: stdout, Stderr: stderr}
	fs.StringVar(&opts.Input, "input", "", "JSON array of report rows")
	fs.StringVar(&opts.Previous, "previous", "", "JSON array of previous-period rows")
	fs.StringVar(&opts.Baseline, "baseline", "", "JSON per-day expense baseline")
	fs.StringVar(&opts.Today, "today", "", "override today (YYYY-MM-DD)")
	fs.StringVar(&opts.End, "end", "", "range end date (YYYY-MM-DD)")
	fs.BoolVar(&opts.JSONOutput, "json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	return cli.KPICommand(opts)
}

func runJobs(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
	defer func() {
		if err := jobsCLI.Close(); err != nil {
			fmt.Fprintf(stderr, "close: %v\n", err)
		}
	}()

	switch args[0] {
	case "trigger":
		fs := flag.NewFlagSet("jobs trigger", flag.ContinueOnError)
		fs.SetOutput(stderr)
		store := fs.String("store", "", "only warm this store")
		date := fs.String("date", "", "warm as of this date (YYYY-MM-DD)")
		if len(args) < 2 {
			fmt.Fprint(stderr, usage)
			return 2
		}
		if err := fs.Parse(args[2:]); err != nil {
			return 2
		}
		info, err := jobsCLI.Trigger(ctx, args[1], *store, *date)
		if err != nil {
			fmt.Fprintf(stderr, "jobs trigger: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
		return 0
	case "stats":
		fs := flag.NewFlagSet("jobs stats", flag.ContinueOnError)
		fs.SetOutput(stderr)
		asJSON := fs.Bool("json", false, "print JSON")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "jobs stats: %v\n", err)
			return 1
		}
		if *asJSON {
			_ = json.NewEncoder(stdout).Encode(stats)
			return 0
		}
		fmt.Fprintf(stdout, "queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d processed=%d failed=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived, stats.Processed, stats.Failed)
		return 0
	default:
		fmt.Fprint(stderr, usage)
		return 2
	}
}

func runMigrate(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	if args[0] == "validate" {
		if err := migrate.Validate(migrations.FS); err != nil {
			fmt.Fprintf(stderr, "migrate: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, "migration validation passed")
		return 0
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		fmt.Fprintf(stderr, "migrate: %v\n", err)
		return 1
	}
	defer pool.Close()
	if err := migrate.Run(ctx, pool, args[0], args[1:]...); err != nil {
		fmt.Fprintf(stderr, "migrate: %v\n", err)
		return 1
	}
	return 0
}
