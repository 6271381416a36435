// volatixd is the Volatix cache server daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/juanmilkah/volatix/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut *os.File) int {
	fs := flag.NewFlagSet("volatixd", flag.ContinueOnError)
	fs.SetOutput(errOut)

	flagConfig := fs.StringP("config", "c", "volatix.json", "path to an optional JSONC config file")
	flagPort := fs.Uint16P("port", "p", 0, "TCP port to listen on (overrides config)")
	flagSnapshotPath := fs.String("snapshot-path", "", "snapshot file path (overrides config)")
	flagSnapshotInterval := fs.Int64("snapshots_interval", 0, "seconds between snapshots (overrides config)")
	flagMetricsAddr := fs.String("metrics-addr", "", "address to serve Prometheus metrics on, e.g. :9090 (overrides config)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := server.LoadFile(*flagConfig, server.DefaultServerConfig())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 1
	}

	if *flagPort != 0 {
		cfg.Port = *flagPort
	}
	if fs.Changed("snapshot-path") {
		cfg.SnapshotPath = *flagSnapshotPath
	}
	if fs.Changed("snapshots_interval") {
		cfg.SnapshotInterval = time.Duration(*flagSnapshotInterval) * time.Second
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = *flagMetricsAddr
	}

	fmt.Fprintf(out, "volatixd: listening on :%d (snapshot=%s every %s)\n",
		cfg.Port, cfg.SnapshotPath, cfg.SnapshotInterval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	srv := server.New(cfg, out, errOut)

	start := time.Now()
	code := srv.Run(context.Background(), sigCh)
	fmt.Fprintf(errOut, "volatixd: exited after %s\n", time.Since(start).Round(time.Second))

	return code
}
