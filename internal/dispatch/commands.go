package dispatch

import (
	"strconv"
	"strings"
	"time"

	"github.com/juanmilkah/volatix/internal/engine"
	"github.com/juanmilkah/volatix/internal/protocol"
	"github.com/juanmilkah/volatix/internal/snapshot"
	"github.com/juanmilkah/volatix/internal/value"
)

// allCommands is the full command list of spec.md §4.3, plus the
// additive DUMPSNAPSHOT of the REDESIGN FLAGS section.
func allCommands() []*Command {
	return []*Command{
		{Name: "HELLO", Arity: fixedArity(0), Exec: execHello},
		{Name: "SET", Arity: fixedArity(2), Exec: execSet},
		{Name: "GET", Arity: fixedArity(1), Exec: execGet},
		{Name: "DELETE", Arity: fixedArity(1), Exec: execDelete},
		{Name: "EXISTS", Arity: fixedArity(1), Exec: execExists},
		{Name: "INCR", Arity: fixedArity(1), Exec: execIncr},
		{Name: "DECR", Arity: fixedArity(1), Exec: execDecr},
		{Name: "RENAME", Arity: fixedArity(2), Exec: execRename},
		{Name: "KEYS", Arity: fixedArity(0), Exec: execKeys},
		{Name: "FLUSH", Arity: fixedArity(0), Exec: execFlush},
		{Name: "SETLIST", Arity: minArity(1), Exec: execSetList},
		{Name: "GETLIST", Arity: minArity(1), Exec: execGetList},
		{Name: "DELETELIST", Arity: minArity(1), Exec: execDeleteList},
		{Name: "SETMAP", Arity: minArity(1), Exec: execSetMap},
		{Name: "SETWTTL", Arity: fixedArity(3), Exec: execSetWTTL},
		{Name: "EXPIRE", Arity: fixedArity(2), Exec: execExpire},
		{Name: "GETTTL", Arity: fixedArity(1), Exec: execGetTTL},
		{Name: "EVICTNOW", Arity: fixedArity(0), Exec: execEvictNow},
		{Name: "GETSTATS", Arity: fixedArity(0), Exec: execGetStats},
		{Name: "RESETSTATS", Arity: fixedArity(0), Exec: execResetStats},
		{Name: "DUMP", Arity: fixedArity(1), Exec: execDump},
		{Name: "CONFSET", Arity: fixedArity(2), Exec: execConfSet},
		{Name: "CONFGET", Arity: fixedArity(1), Exec: execConfGet},
		{Name: "CONFOPTIONS", Arity: fixedArity(0), Exec: execConfOptions},
		{Name: "CONFRESET", Arity: fixedArity(0), Exec: execConfReset},
		{Name: "HELP", Arity: fixedArity(0), Exec: execHelp},
		{Name: "QUIT", Arity: fixedArity(0), Exec: execQuit},
		{Name: "DUMPSNAPSHOT", Arity: fixedArity(1), Exec: execDumpSnapshot},
	}
}

func execHello(_ *engine.Engine, _ []protocol.Frame) protocol.Frame {
	return protocol.Bulk([]byte("HELLO"))
}

func execSet(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	key, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR SET: key must be a bulk string")
	}
	v, err := argValue(args[1])
	if err != nil {
		return protocol.Err("ERR SET: value must be a bulk string")
	}
	if err := e.Set(key, v); err != nil {
		return errFrame(err)
	}
	return protocol.Simple("OK")
}

func execGet(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	key, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR GET: key must be a bulk string")
	}
	v, err := e.Get(key)
	if err != nil {
		return errFrame(err)
	}
	return valueToFrame(v)
}

func execDelete(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	key, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR DELETE: key must be a bulk string")
	}
	if err := e.Delete(key); err != nil {
		return errFrame(err)
	}
	return protocol.Simple("OK")
}

func execExists(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	key, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR EXISTS: key must be a bulk string")
	}
	return protocol.Bool(e.Exists(key))
}

func execIncr(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	key, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR INCR: key must be a bulk string")
	}
	n, err := e.Incr(key)
	if err != nil {
		return errFrame(err)
	}
	return protocol.Int(n)
}

func execDecr(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	key, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR DECR: key must be a bulk string")
	}
	n, err := e.Decr(key)
	if err != nil {
		return errFrame(err)
	}
	return protocol.Int(n)
}

func execRename(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	oldKey, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR RENAME: old key must be a bulk string")
	}
	newKey, err := argText(args[1])
	if err != nil {
		return protocol.Err("ERR RENAME: new key must be a bulk string")
	}
	if err := e.Rename(oldKey, newKey); err != nil {
		return errFrame(err)
	}
	return protocol.Simple("OK")
}

func execKeys(e *engine.Engine, _ []protocol.Frame) protocol.Frame {
	keys := e.Keys()
	frames := make([]protocol.Frame, len(keys))
	for i, k := range keys {
		frames[i] = protocol.Bulk([]byte(k))
	}
	return protocol.Array(frames)
}

func execFlush(e *engine.Engine, _ []protocol.Frame) protocol.Frame {
	e.Flush()
	return protocol.Simple("OK")
}

func execSetList(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	key, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR SETLIST: key must be a bulk string")
	}
	elems := make([]value.Value, len(args)-1)
	for i, a := range args[1:] {
		v, err := argValue(a)
		if err != nil {
			return protocol.Err("ERR SETLIST: elements must be bulk strings")
		}
		elems[i] = v
	}
	if err := e.SetList(key, elems); err != nil {
		return errFrame(err)
	}
	return protocol.Simple("OK")
}

func execGetList(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	keys := make([]string, len(args))
	for i, a := range args {
		k, err := argText(a)
		if err != nil {
			return protocol.Err("ERR GETLIST: keys must be bulk strings")
		}
		keys[i] = k
	}

	values, errs := e.GetList(keys)
	frames := make([]protocol.Frame, len(keys))
	for i := range keys {
		if errs[i] != nil {
			frames[i] = protocol.NullBulk()
			continue
		}
		frames[i] = valueToFrame(values[i])
	}
	return protocol.Array(frames)
}

func execDeleteList(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	keys := make([]string, len(args))
	for i, a := range args {
		k, err := argText(a)
		if err != nil {
			return protocol.Err("ERR DELETELIST: keys must be bulk strings")
		}
		keys[i] = k
	}

	return protocol.Int(int64(e.DeleteList(keys)))
}

func execSetMap(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	key, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR SETMAP: key must be a bulk string")
	}
	rest := args[1:]
	if len(rest)%2 != 0 {
		return protocol.Err("ERR SETMAP: fields must be field/value pairs")
	}

	fields := make(map[string]value.Value, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		field, err := argText(rest[i])
		if err != nil {
			return protocol.Err("ERR SETMAP: field names must be bulk strings")
		}
		v, err := argValue(rest[i+1])
		if err != nil {
			return protocol.Err("ERR SETMAP: field values must be bulk strings")
		}
		fields[field] = v
	}

	if err := e.SetMap(key, fields); err != nil {
		return errFrame(err)
	}
	return protocol.Simple("OK")
}

func execSetWTTL(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	key, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR SETWTTL: key must be a bulk string")
	}
	v, err := argValue(args[1])
	if err != nil {
		return protocol.Err("ERR SETWTTL: value must be a bulk string")
	}
	ttlText, err := argText(args[2])
	if err != nil {
		return protocol.Err("ERR SETWTTL: ttl must be a bulk string")
	}
	seconds, err := strconv.ParseInt(ttlText, 10, 64)
	if err != nil {
		return protocol.Err("ERR SETWTTL: ttl must be an integer number of seconds")
	}

	if err := e.SetWithTTL(key, v, time.Duration(seconds)*time.Second); err != nil {
		return errFrame(err)
	}
	return protocol.Simple("OK")
}

func execExpire(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	key, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR EXPIRE: key must be a bulk string")
	}
	deltaText, err := argText(args[1])
	if err != nil {
		return protocol.Err("ERR EXPIRE: delta must be a bulk string")
	}
	seconds, err := strconv.ParseInt(deltaText, 10, 64)
	if err != nil {
		return protocol.Err("ERR EXPIRE: delta must be a signed integer number of seconds")
	}

	if err := e.Expire(key, time.Duration(seconds)*time.Second); err != nil {
		return errFrame(err)
	}
	return protocol.Simple("OK")
}

func execGetTTL(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	key, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR GETTTL: key must be a bulk string")
	}
	ttl, err := e.GetTTL(key)
	if err != nil {
		return errFrame(err)
	}
	return protocol.Int(int64(ttl / time.Second))
}

func execEvictNow(e *engine.Engine, _ []protocol.Frame) protocol.Frame {
	return protocol.Int(int64(e.EvictNow()))
}

func execGetStats(e *engine.Engine, _ []protocol.Frame) protocol.Frame {
	s := e.GetStats()
	return protocol.MapFrame([]protocol.Frame{
		protocol.Bulk([]byte("hits")), protocol.Int(int64(s.Hits)),
		protocol.Bulk([]byte("misses")), protocol.Int(int64(s.Misses)),
		protocol.Bulk([]byte("evictions")), protocol.Int(int64(s.Evictions)),
		protocol.Bulk([]byte("expired_removals")), protocol.Int(int64(s.ExpiredRemovals)),
		protocol.Bulk([]byte("total_entries")), protocol.Int(int64(s.TotalEntries)),
	})
}

func execResetStats(e *engine.Engine, _ []protocol.Frame) protocol.Frame {
	e.ResetStats()
	return protocol.Simple("OK")
}

func execDump(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	key, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR DUMP: key must be a bulk string")
	}
	d, err := e.Dump(key)
	if err != nil {
		return errFrame(err)
	}
	return protocol.MapFrame([]protocol.Frame{
		protocol.Bulk([]byte("created_at")), protocol.Int(d.CreatedAt.Unix()),
		protocol.Bulk([]byte("last_accessed")), protocol.Int(d.LastAccessed.Unix()),
		protocol.Bulk([]byte("access_count")), protocol.Int(int64(d.AccessCount)),
		protocol.Bulk([]byte("size")), protocol.Int(int64(d.Size)),
		protocol.Bulk([]byte("compressed")), protocol.Bool(d.Compressed),
		protocol.Bulk([]byte("ttl_remaining")), protocol.Int(int64(d.TTLRemaining / time.Second)),
	})
}

func execConfSet(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	name, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR CONFSET: option name must be a bulk string")
	}
	val, err := argText(args[1])
	if err != nil {
		return protocol.Err("ERR CONFSET: option value must be a bulk string")
	}
	if err := e.ConfSet(name, val); err != nil {
		return errFrame(err)
	}
	return protocol.Simple("OK")
}

func execConfGet(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	name, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR CONFGET: option name must be a bulk string")
	}
	val, err := e.ConfGet(name)
	if err != nil {
		return errFrame(err)
	}
	return protocol.Bulk([]byte(val))
}

func execConfOptions(e *engine.Engine, _ []protocol.Frame) protocol.Frame {
	opts := e.ConfOptions()
	frames := make([]protocol.Frame, len(opts))
	for i, o := range opts {
		frames[i] = protocol.Bulk([]byte(o))
	}
	return protocol.Array(frames)
}

func execConfReset(e *engine.Engine, _ []protocol.Frame) protocol.Frame {
	e.ConfReset()
	return protocol.Simple("OK")
}

func execHelp(_ *engine.Engine, _ []protocol.Frame) protocol.Frame {
	names := make([]string, 0, len(Table))
	for name := range Table {
		names = append(names, name)
	}
	return protocol.Bulk([]byte(strings.Join(names, " ")))
}

func execQuit(_ *engine.Engine, _ []protocol.Frame) protocol.Frame {
	return protocol.Simple("OK")
}

func execDumpSnapshot(e *engine.Engine, args []protocol.Frame) protocol.Frame {
	path, err := argText(args[0])
	if err != nil {
		return protocol.Err("ERR DUMPSNAPSHOT: path must be a bulk string")
	}
	if err := snapshot.SaveTo(path, e); err != nil {
		return protocol.Err("ERR DUMPSNAPSHOT: " + err.Error())
	}
	return protocol.Simple("OK")
}
