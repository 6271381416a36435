package server_test

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmilkah/volatix/internal/protocol"
	"github.com/juanmilkah/volatix/internal/server"
)

func freePort(t *testing.T) uint16 {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return uint16(ln.Addr().(*net.TCPAddr).Port)
}

func TestServerAcceptsConnectionsAndShutsDownOnSignal(t *testing.T) {
	cfg := server.DefaultServerConfig()
	cfg.Port = freePort(t)
	cfg.SnapshotPath = filepath.Join(t.TempDir(), "volatix.snapshot")
	cfg.SnapshotInterval = 0

	errOut := new(bytes.Buffer)
	srv := server.New(cfg, new(bytes.Buffer), errOut)

	sigCh := make(chan os.Signal, 1)
	resultCh := make(chan int, 1)
	go func() {
		resultCh <- srv.Run(context.Background(), sigCh)
	}()

	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(int(cfg.Port)))
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	defer conn.Close()

	conn.Write(protocol.Serialize(protocol.Array([]protocol.Frame{protocol.Bulk([]byte("HELLO"))})))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	resp, _, err := protocol.Parse(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, protocol.KindBulk, resp.Kind)

	sigCh <- os.Interrupt

	select {
	case code := <-resultCh:
		assert.Equal(t, 130, code)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down within the grace window")
	}
}
