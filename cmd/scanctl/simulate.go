package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/sentinel-red/sentinel-backend/internal/fixtures"
	projectrepo "github.com/sentinel-red/sentinel-backend/internal/projects/repository"
	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
	"github.com/sentinel-red/sentinel-backend/internal/scans/simulator"
)

func newSimulateCmd() *cobra.Command {
	var (
		projectID string
		tick      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one simulated scan and print its progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runSimulation(ctx, cmd.OutOrStdout(), projectID, tick)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "proj-1", "project to scan")
	cmd.Flags().DurationVar(&tick, "tick", 50*time.Millisecond, "simulator tick interval")
	return cmd
}

func runSimulation(ctx context.Context, out io.Writer, projectID string, tick time.Duration) error {
	registry := projectrepo.NewRegistry()
	projects, err := fixtures.Projects(time.Now())
	if err != nil {
		return err
	}
	registry.Seed(projects)
	if _, err := registry.Get(ctx, projectID); err != nil {
		return fmt.Errorf("%s: %w", projectID, err)
	}

	done := make(chan domain.ScanState, 1)
	printer := simulator.ObserverFunc(func(ctx context.Context, ev simulator.Event) {
		fmt.Fprintf(out, "[%3d%%] %-9s %s\n", ev.Scan.Progress, ev.Scan.Status, domain.CurrentStep(ev.Scan.Progress))
		for _, line := range ev.NewLogs {
			fmt.Fprintf(out, "       %s\n", line)
		}
		if ev.Scan.Status.IsTerminal() {
			done <- *ev.Scan
		}
	})

	sim := simulator.New(registry, simulator.Options{TickInterval: tick}, printer)
	defer sim.Close()

	scanID, err := sim.Start(ctx, projectID)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		if err := sim.Stop(context.Background(), scanID); err != nil {
			return err
		}
		<-done
		return ctx.Err()
	case final := <-done:
		p, err := registry.Get(ctx, projectID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "scan %s %s; %s findings: %+v\n", final.ScanID, final.Status, p.Name, *p.VulnerabilityCounts)
		return nil
	}
}
