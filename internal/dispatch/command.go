// Package dispatch maps parsed protocol frames onto engine operations and
// serializes their results back into frames (spec.md §4.3). It holds no
// connection state of its own — handshake enforcement lives in
// internal/server, which is the thing that actually has per-connection
// state to track.
package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/juanmilkah/volatix/internal/engine"
	"github.com/juanmilkah/volatix/internal/protocol"
)

// Arity describes how many arguments (beyond the command name) a command
// accepts. Min == Max for a fixed-arity command; Max == -1 means
// unbounded.
type Arity struct {
	Min int
	Max int // -1 = unbounded
}

func fixedArity(n int) Arity   { return Arity{Min: n, Max: n} }
func minArity(n int) Arity     { return Arity{Min: n, Max: -1} }
func rangeArity(lo, hi int) Arity { return Arity{Min: lo, Max: hi} }

func (a Arity) accepts(n int) bool {
	if n < a.Min {
		return false
	}
	if a.Max >= 0 && n > a.Max {
		return false
	}
	return true
}

// Command is one recognized command: its name, accepted argument count,
// and the function that executes it against the engine. This mirrors the
// teacher's internal/cli Command{Flags, Usage, Exec} shape, replacing
// process exit codes with the -ERR frames of spec.md §4.3/§7.
type Command struct {
	Name  string
	Arity Arity
	Exec  func(e *engine.Engine, args []protocol.Frame) protocol.Frame
}

// Table is the name → *Command lookup, built once at package init the
// same way internal/cli/run.go's allCommands builds commandMap.
var Table = buildTable()

func buildTable() map[string]*Command {
	cmds := allCommands()
	m := make(map[string]*Command, len(cmds))
	for _, c := range cmds {
		m[strings.ToUpper(c.Name)] = c
	}
	return m
}

// Lookup resolves a command name case-insensitively.
func Lookup(name string) (*Command, bool) {
	c, ok := Table[strings.ToUpper(name)]
	return c, ok
}

// CommandName extracts the command name from a request frame without
// executing it, so internal/server can enforce the HELLO handshake and
// detect QUIT before/after calling Execute.
func CommandName(frame protocol.Frame) (string, bool) {
	if frame.Kind != protocol.KindArray || frame.Null || len(frame.Array) == 0 {
		return "", false
	}
	name, err := argText(frame.Array[0])
	if err != nil {
		return "", false
	}
	return strings.ToUpper(name), true
}

// Execute dispatches a fully-parsed command frame (an Array whose first
// element is the command name) against e, returning the response frame.
// It never panics: unknown commands, arity mismatches, and argument
// coercion failures all produce -ERR frames.
func Execute(e *engine.Engine, frame protocol.Frame) protocol.Frame {
	if frame.Kind != protocol.KindArray || frame.Null || len(frame.Array) == 0 {
		return protocol.Err("ERR empty command")
	}

	nameArg, err := argText(frame.Array[0])
	if err != nil {
		return protocol.Err("ERR command name must be a bulk string")
	}

	cmd, ok := Lookup(nameArg)
	if !ok {
		return protocol.Err(fmt.Sprintf("ERR unknown command %q", nameArg))
	}

	args := frame.Array[1:]
	if !cmd.Arity.accepts(len(args)) {
		return protocol.Err(fmt.Sprintf("ERR %s: wrong number of arguments", cmd.Name))
	}

	return cmd.Exec(e, args)
}

// errFrame classifies an engine error into the -ERR <kind>: <message>
// shape of spec.md §4.3/§7.
func errFrame(err error) protocol.Frame {
	kind := "ERR"
	switch {
	case errors.Is(err, engine.ErrNotFound):
		kind = "NOTFOUND"
	case errors.Is(err, engine.ErrConflict):
		kind = "CONFLICT"
	case errors.Is(err, engine.ErrTypeMismatch):
		kind = "TYPEMISMATCH"
	case errors.Is(err, engine.ErrCapacity):
		kind = "CAPACITY"
	case errors.Is(err, engine.ErrConfig):
		kind = "CONFIG"
	case errors.Is(err, engine.ErrDecompress):
		kind = "DECOMPRESS"
	}
	return protocol.Err(fmt.Sprintf("ERR %s: %s", kind, err.Error()))
}
