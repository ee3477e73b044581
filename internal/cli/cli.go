// ============================================================================
// Corosched CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Provides user-friendly command line interface based on Cobra framework
//
// Command Structure:
//   corosched                      # Root command
//   ├── run                        # Start the scheduler
//   │   └── --config, -c          # Specify config file
//   ├── demo                       # Run a ParallelFor sample workload
//   ├── status                     # Query a running scheduler's admin endpoint
//   ├── --version                  # Display version information
//   └── --help                     # Display help information
//
// Configuration Management:
//   Uses YAML format config file (default: configs/default.yaml), loaded via
//   internal/config. Configuration items include:
//   - scheduler: Worker pool sizing
//   - metrics: Prometheus monitoring configuration
//   - admin: gRPC admin endpoint configuration
//
// run Command:
//   Starts the scheduler, including:
//   1. Load config file
//   2. Create the Scheduler with a Prometheus MetricsSink
//   3. Start the Metrics HTTP server (if enabled)
//   4. Start the Admin gRPC server (if enabled)
//   5. Listen for system signals (SIGINT, SIGTERM)
//   6. Gracefully shut the scheduler down
//
//   Examples:
//     ./corosched run
//     ./corosched run -c custom-config.yaml
//
// demo Command:
//   Schedules a small ParallelFor workload and prints the elapsed time,
//   useful for smoke-testing a build without wiring up real jobs.
//
// status Command:
//   Dials the admin gRPC endpoint and prints the Stats() response.
//
// Signal Handling:
//   run command captures following signals and gracefully shuts down:
//   - SIGINT (Ctrl+C): User interrupt
//   - SIGTERM: System terminate request
//
// ============================================================================

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/beaversched/corosched/internal/adminserver"
	"github.com/beaversched/corosched/internal/config"
	"github.com/beaversched/corosched/internal/metrics"
	"github.com/beaversched/corosched/pkg/coro"
)

var configFile string

// BuildCLI assembles the root cobra.Command for the corosched binary.
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "corosched",
		Short: "Corosched: a cooperative coroutine job scheduler",
		Long: `Corosched schedules cooperative jobs onto a bounded worker pool:
- Temporary-worker deadlock avoidance when awaiting nested jobs
- Prometheus metrics
- gRPC admin introspection`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/default.yaml", "config file path")

	rootCmd.AddCommand(buildRunCommand())
	rootCmd.AddCommand(buildDemoCommand())
	rootCmd.AddCommand(buildStatusCommand())

	return rootCmd
}

func buildRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the scheduler and its metrics/admin servers",
		Long:  "Start the scheduler, Prometheus metrics endpoint, and admin gRPC endpoint, then block until signaled.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSystem()
		},
	}
	return cmd
}

func runSystem() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := slog.Default()
	log.Info("starting corosched", "worker_count", cfg.Scheduler.WorkerCount)

	var sink coro.MetricsSink
	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector()
		sink = collector
		go func() {
			log.Info("starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.StartServer(cfg.Metrics.Addr); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	var opts []coro.Option
	opts = append(opts, coro.WithLogger(log))
	if sink != nil {
		opts = append(opts, coro.WithMetrics(sink))
	}
	sched := coro.New(cfg.Scheduler.WorkerCount, opts...)

	var grpcServer *grpc.Server
	if cfg.Admin.Enabled {
		lis, err := net.Listen("tcp", cfg.Admin.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on admin addr %s: %w", cfg.Admin.Addr, err)
		}
		grpcServer = grpc.NewServer()
		adminserver.Register(grpcServer, adminserver.New(sched, log))
		go func() {
			log.Info("starting admin server", "addr", cfg.Admin.Addr)
			if err := grpcServer.Serve(lis); err != nil {
				log.Error("admin server stopped", "error", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("received shutdown signal, stopping gracefully")

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sched.Shutdown(ctx); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}

	log.Info("corosched stopped")
	return nil
}

func buildDemoCommand() *cobra.Command {
	var workers int
	var count int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a sample ParallelFor workload",
		Long:  "Schedules a small sample workload to smoke-test a build without wiring up real jobs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(workers, count)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 4, "worker pool size")
	cmd.Flags().IntVar(&count, "count", 10, "number of sample jobs")

	return cmd
}

func runDemo(workers, count int) error {
	sched := coro.New(workers)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sched.Shutdown(ctx)
	}()

	start := time.Now()
	items := make([]coro.DeferredToken[struct{}], 0, count)
	for i := 0; i < count; i++ {
		i := i
		items = append(items, coro.NewDeferredToken(sched, func(ctx context.Context) (struct{}, error) {
			time.Sleep(time.Millisecond)
			fmt.Printf("job %d completed\n", i)
			return struct{}{}, nil
		}))
	}

	all := coro.ParallelFor(sched, items)
	if err := all.Await(context.Background()); err != nil {
		return fmt.Errorf("demo workload failed: %w", err)
	}

	fmt.Printf("ran %d jobs across %d workers in %s\n", count, workers, time.Since(start))
	return nil
}

func buildStatusCommand() *cobra.Command {
	var adminAddr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show scheduler status via the admin endpoint",
		Long:  "Dial a running scheduler's admin gRPC endpoint and print its Stats() response.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(adminAddr)
		},
	}

	cmd.Flags().StringVar(&adminAddr, "admin", "localhost:7070", "admin gRPC address")
	return cmd
}

func showStatus(adminAddr string) error {
	conn, err := grpc.NewClient(adminAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to admin endpoint: %w", err)
	}
	defer conn.Close()

	client := adminserver.NewClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := client.Stats(ctx, &emptypb.Empty{})
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}

	fmt.Println("\nCorosched Status")
	fmt.Println("================")
	for k, v := range stats.GetFields() {
		fmt.Printf("  %-16s %v\n", k+":", v.GetNumberValue())
	}
	return nil
}
