// Command sakuractl triggers and inspects background jobs by hand.
//
//	sakuractl trigger reviews:warmup
//	sakuractl trigger idempotency:cleanup
//	sakuractl stats
//	sakuractl scheduled -n 20
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/hibiken/asynq"

	"github.com/sakura-salon/sakura/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "sakuractl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usageError()
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	cli := NewJobsCLI(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}, cfg.IdempotencyRetention)
	defer cli.Close()

	switch args[0] {
	case "trigger":
		if len(args) != 2 {
			return usageError()
		}
		info, err := cli.Trigger(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "enqueued %s as %s on %s\n", info.Type, info.ID, info.Queue)
		return nil
	case "stats":
		stats, err := cli.InspectQueue()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "QUEUE\tPENDING\tACTIVE\tSCHEDULED\tRETRY\tARCHIVED")
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
		return tw.Flush()
	case "scheduled":
		fs := flag.NewFlagSet("scheduled", flag.ContinueOnError)
		size := fs.Int("n", 10, "number of tasks to list")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		tasks, err := cli.ListScheduled(*size)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			fmt.Fprintf(out, "%s\t%s\t%s\n", task.ID, task.Type, task.NextProcessAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	default:
		return usageError()
	}
}

func usageError() error {
	return fmt.Errorf("usage: sakuractl trigger <reviews:warmup|idempotency:cleanup> | stats | scheduled [-n N]")
}
