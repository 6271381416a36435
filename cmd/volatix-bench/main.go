// volatix-bench drives a concurrent SET/GET/DELETE workload against a
// Volatix server and reports throughput and tail latency.
package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/juanmilkah/volatix/internal/protocol"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut *os.File) int {
	fs := flag.NewFlagSet("volatix-bench", flag.ContinueOnError)
	fs.SetOutput(errOut)

	addr := fs.StringP("addr", "a", "127.0.0.1:6380", "server address")
	workers := fs.IntP("workers", "w", 16, "number of concurrent connections/workers")
	ops := fs.IntP("ops", "n", 10000, "total number of operations to issue")
	setPct := fs.Int("set-pct", 40, "percentage of operations that are SET")
	getPct := fs.Int("get-pct", 50, "percentage of operations that are GET (remainder is DELETE)")
	valueSize := fs.Int("value-size", 64, "size in bytes of SET values")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *setPct+*getPct > 100 {
		fmt.Fprintln(errOut, "error: set-pct + get-pct must not exceed 100")
		return 2
	}

	mix := opMix{setPct: *setPct, getPct: *getPct}
	value := make([]byte, *valueSize)
	for i := range value {
		value[i] = byte('a' + i%26)
	}

	perWorker := *ops / *workers
	results := make(chan []time.Duration, *workers)
	var errCount atomic.Int64

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			lat, err := runWorker(*addr, id, perWorker, mix, value)
			if err != nil {
				errCount.Add(1)
				fmt.Fprintf(errOut, "worker %d: %v\n", id, err)
				results <- nil
				return
			}
			results <- lat
		}(w)
	}
	wg.Wait()
	close(results)
	elapsed := time.Since(start)

	var all []time.Duration
	for lat := range results {
		all = append(all, lat...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	if len(all) == 0 {
		fmt.Fprintln(errOut, "error: no successful operations")
		return 1
	}

	fmt.Fprintf(out, "ops: %d  workers: %d  errors: %d  elapsed: %s\n",
		len(all), *workers, errCount.Load(), elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "throughput: %.0f ops/sec\n", float64(len(all))/elapsed.Seconds())
	fmt.Fprintf(out, "latency p50: %s  p95: %s  p99: %s\n",
		percentile(all, 0.50), percentile(all, 0.95), percentile(all, 0.99))

	return 0
}

type opMix struct {
	setPct int
	getPct int
}

// pick deterministically chooses an operation for sequence i so that the
// mix is exact and reproducible run to run, rather than sampled.
func (m opMix) pick(i int) string {
	mod := i % 100
	if mod < m.setPct {
		return "SET"
	}
	if mod < m.setPct+m.getPct {
		return "GET"
	}
	return "DELETE"
}

func runWorker(addr string, id, n int, mix opMix, value []byte) ([]time.Duration, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	buf := make([]byte, 0, 4096)
	if _, err := roundTrip(conn, &buf, cmdFrame("HELLO")); err != nil {
		return nil, fmt.Errorf("handshake: %w", err)
	}

	lat := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("bench:%d:%d", id, i)
		var frame protocol.Frame
		switch mix.pick(i) {
		case "SET":
			frame = cmdFrame("SET", key, string(value))
		case "GET":
			frame = cmdFrame("GET", key)
		default:
			frame = cmdFrame("DELETE", key)
		}

		t0 := time.Now()
		if _, err := roundTrip(conn, &buf, frame); err != nil {
			return lat, fmt.Errorf("op %d: %w", i, err)
		}
		lat = append(lat, time.Since(t0))
	}

	return lat, nil
}

func roundTrip(conn net.Conn, buf *[]byte, f protocol.Frame) (protocol.Frame, error) {
	if _, err := conn.Write(protocol.Serialize(f)); err != nil {
		return protocol.Frame{}, err
	}

	chunk := make([]byte, 4096)
	for {
		resp, consumed, err := protocol.Parse(*buf)
		if err == nil {
			*buf = (*buf)[consumed:]
			return resp, nil
		}
		if !errors.Is(err, protocol.ErrIncomplete) {
			return protocol.Frame{}, err
		}

		n, err := conn.Read(chunk)
		if n > 0 {
			*buf = append(*buf, chunk[:n]...)
		}
		if err != nil {
			return protocol.Frame{}, err
		}
	}
}

func cmdFrame(args ...string) protocol.Frame {
	frames := make([]protocol.Frame, len(args))
	for i, a := range args {
		frames[i] = protocol.Bulk([]byte(a))
	}
	return protocol.Array(frames)
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
