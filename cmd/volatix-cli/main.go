// volatix-cli is an interactive client for talking to a Volatix server
// over its wire protocol.
//
// Usage:
//
//	volatix-cli [--addr host:port]
//
// Commands (in REPL):
//
//	SET <key> <value>
//	GET <key>
//	DELETE <key>
//	EXISTS <key>
//	INCR / DECR <key>
//	SETWTTL <key> <value> <seconds>
//	EXPIRE <key> <delta-seconds>
//	GETTTL <key>
//	KEYS
//	FLUSH
//	GETSTATS / RESETSTATS
//	CONFGET <name> / CONFSET <name> <value> / CONFOPTIONS / CONFRESET
//	DUMPSNAPSHOT <path>
//	help
//	exit / quit / q
package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/juanmilkah/volatix/internal/protocol"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("volatix-cli", flag.ContinueOnError)
	fs.SetOutput(errOut)
	addr := fs.StringP("addr", "a", "127.0.0.1:6380", "server address")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(errOut, "error: connect to %s: %v\n", *addr, err)
		return 1
	}
	defer conn.Close()

	c := &client{conn: conn, out: out}
	if _, err := c.send(cmdFrame("HELLO")); err != nil {
		fmt.Fprintf(errOut, "error: handshake: %v\n", err)
		return 1
	}

	repl := &REPL{client: c, out: out}
	if err := repl.Run(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 1
	}

	return 0
}

// client holds one connection's read buffer across commands.
type client struct {
	conn net.Conn
	buf  []byte
	out  io.Writer
}

func (c *client) send(f protocol.Frame) (protocol.Frame, error) {
	if _, err := c.conn.Write(protocol.Serialize(f)); err != nil {
		return protocol.Frame{}, fmt.Errorf("write: %w", err)
	}

	chunk := make([]byte, 4096)
	for {
		resp, consumed, err := protocol.Parse(c.buf)
		if err == nil {
			c.buf = c.buf[consumed:]
			return resp, nil
		}
		if !errors.Is(err, protocol.ErrIncomplete) {
			return protocol.Frame{}, err
		}

		n, err := c.conn.Read(chunk)
		if n > 0 {
			c.buf = append(c.buf, chunk[:n]...)
		}
		if err != nil {
			return protocol.Frame{}, fmt.Errorf("read: %w", err)
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

// REPL is the interactive loop, grounded on the pack's liner-based
// slotcache REPL.
type REPL struct {
	client *client
	out    io.Writer
	liner  *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".volatix_history")
}

func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(r.out, "volatix-cli connected. Type 'help' for available commands.")

	for {
		line, err := r.liner.Prompt("volatix> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nBye!")
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		fields := strings.Fields(line)
		name := strings.ToUpper(fields[0])

		switch name {
		case "EXIT", "QUIT", "Q":
			r.saveHistory()
			fmt.Fprintln(r.out, "Bye!")
			return nil
		case "HELP", "?":
			r.printHelp()
			continue
		}

		resp, err := r.client.send(cmdFrame(fields...))
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			continue
		}
		printFrame(r.out, resp, 0)

		if name == "QUIT" {
			r.saveHistory()
			return nil
		}
	}

	r.saveHistory()
	return nil
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

var replCommands = []string{
	"SET", "GET", "DELETE", "EXISTS", "INCR", "DECR", "RENAME",
	"SETLIST", "GETLIST", "DELETELIST", "SETMAP",
	"SETWTTL", "EXPIRE", "GETTTL", "EVICTNOW",
	"KEYS", "FLUSH", "DUMP", "DUMPSNAPSHOT",
	"GETSTATS", "RESETSTATS",
	"CONFGET", "CONFSET", "CONFOPTIONS", "CONFRESET",
	"HELP", "EXIT", "QUIT",
}

func (r *REPL) completer(line string) []string {
	var out []string
	upper := strings.ToUpper(line)
	for _, cmd := range replCommands {
		if strings.HasPrefix(cmd, upper) {
			out = append(out, cmd)
		}
	}
	return out
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, "Commands:")
	for _, cmd := range replCommands {
		fmt.Fprintf(r.out, "  %s\n", cmd)
	}
}

func printFrame(out io.Writer, f protocol.Frame, depth int) {
	indent := strings.Repeat("  ", depth)
	switch f.Kind {
	case protocol.KindSimple:
		fmt.Fprintf(out, "%s+%s\n", indent, f.Simple)
	case protocol.KindError:
		fmt.Fprintf(out, "%s-%s\n", indent, f.ErrMsg)
	case protocol.KindInteger:
		fmt.Fprintf(out, "%s(integer) %d\n", indent, f.Integer)
	case protocol.KindDouble:
		fmt.Fprintf(out, "%s(double) %g\n", indent, f.Double)
	case protocol.KindBoolean:
		fmt.Fprintf(out, "%s(boolean) %v\n", indent, f.Bool)
	case protocol.KindBulk:
		if f.Null {
			fmt.Fprintf(out, "%s(nil)\n", indent)
			return
		}
		fmt.Fprintf(out, "%s%q\n", indent, string(f.Bulk))
	case protocol.KindArray:
		if f.Null {
			fmt.Fprintf(out, "%s(nil array)\n", indent)
			return
		}
		if len(f.Array) == 0 {
			fmt.Fprintf(out, "%s(empty array)\n", indent)
			return
		}
		for i, e := range f.Array {
			fmt.Fprintf(out, "%s%d)\n", indent, i+1)
			printFrame(out, e, depth+1)
		}
	case protocol.KindMap:
		if len(f.Map) == 0 {
			fmt.Fprintf(out, "%s(empty map)\n", indent)
			return
		}
		for i := 0; i+1 < len(f.Map); i += 2 {
			fmt.Fprintf(out, "%skey:\n", indent)
			printFrame(out, f.Map[i], depth+1)
			fmt.Fprintf(out, "%sval:\n", indent)
			printFrame(out, f.Map[i+1], depth+1)
		}
	default:
		fmt.Fprintf(out, "%s(unknown frame)\n", indent)
	}
}
