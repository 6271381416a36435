// Package server wires together the connection handler, background
// snapshot/expire loops, and process lifecycle (spec.md §4.4/§4.7/§5).
// Run's structure — parse, start work in a goroutine, select between
// completion and signals with a bounded graceful-shutdown window —
// mirrors the teacher's internal/cli/run.go Run function.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/juanmilkah/volatix/internal/engine"
	"github.com/juanmilkah/volatix/internal/metrics"
	"github.com/juanmilkah/volatix/internal/snapshot"
)

const shutdownGrace = 5 * time.Second

// Server is a running Volatix instance.
type Server struct {
	Config Config
	Engine *engine.Engine
	Out    io.Writer
	ErrOut io.Writer
}

// New constructs a Server over a freshly built engine.
func New(cfg Config, out, errOut io.Writer) *Server {
	return &Server{
		Config: cfg,
		Engine: engine.NewEngine(1, cfg.Engine),
		Out:    out,
		ErrOut: errOut,
	}
}

// Run starts the listener, background loops, and optional metrics
// server, then blocks until ctx is canceled or a signal arrives on
// sigCh. It returns a process exit code, the same convention as the
// teacher's cli.Run.
func (s *Server) Run(ctx context.Context, sigCh <-chan os.Signal) int {
	if exists, _ := snapshot.Exists(s.Config.SnapshotPath); exists {
		if err := snapshot.Load(s.Config.SnapshotPath, s.Engine); err != nil {
			fmt.Fprintf(s.ErrOut, "error: load snapshot: %v\n", err)
			return 1
		}
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.Config.Port))
	if err != nil {
		fmt.Fprintf(s.ErrOut, "error: listen on port %d: %v\n", s.Config.Port, err)
		return 1
	}
	defer ln.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go snapshotLoop(runCtx, s.Engine, s.Config.SnapshotPath, s.Config.SnapshotInterval, s.ErrOut)
	go expireLoop(runCtx, s.Engine)

	var metricsSrv *http.Server
	if s.Config.MetricsAddr != "" {
		m := metrics.New()
		metricsSrv = &http.Server{Addr: s.Config.MetricsAddr, Handler: m.Handler(s.Engine)}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(s.ErrOut, "metrics server: %v\n", err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		s.acceptLoop(runCtx, ln)
		close(done)
	}()

	select {
	case <-done:
		return 0
	case <-sigCh:
		fmt.Fprintln(s.ErrOut, "shutting down with 5s timeout...")
		cancel()
		ln.Close()
		if s.Config.SnapshotPath != "" {
			if err := snapshot.Save(s.Config.SnapshotPath, s.Engine); err != nil {
				fmt.Fprintf(s.ErrOut, "error: final snapshot: %v\n", err)
			}
		}
		if metricsSrv != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer shutdownCancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
	}

	select {
	case <-done:
		return 130
	case <-time.After(shutdownGrace):
		fmt.Fprintln(s.ErrOut, "graceful shutdown timed out, forced exit")
		return 130
	}
}

// acceptLoop accepts connections until ctx is canceled, handling each on
// its own goroutine (spec.md §5: "any number of connection tasks run
// concurrently").
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				fmt.Fprintf(s.ErrOut, "accept: %v\n", err)
				return
			}
		}
		go handleConnection(conn, s.Engine, s.ErrOut)
	}
}
