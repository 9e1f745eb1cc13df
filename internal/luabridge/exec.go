package luabridge

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
)

// ExecFile runs the Lua file at path with every entry of e visible as a
// global. Afterwards, globals the script created or reassigned are copied
// back into e and entries whose global became nil are removed.
//
// Values taken from the script may be Lua functions bound to the state used
// to run it; the returned release function closes that state and must be
// called once the environment is no longer used.
func ExecFile(ctx context.Context, path string, e *env.Env) (func(), error) {
	L := lua.NewState()
	L.SetContext(ctx)
	release := func() { L.Close() }

	before := make(map[string]lua.LValue, e.Len())
	e.Range(func(name string, value any) bool {
		lv := ToLua(L, value)
		L.SetGlobal(name, lv)
		// A nil entry has no global to watch; it is only replaced if the
		// script assigns the name.
		if lv != lua.LNil {
			before[name] = lv
		}
		return true
	})
	builtins := snapshotGlobals(L)

	if err := L.DoFile(path); err != nil {
		release()
		return func() {}, fmt.Errorf("run %s: %w", path, err)
	}

	after := snapshotGlobals(L)
	for _, name := range orderedNames(L) {
		lv, ok := after[name]
		if !ok {
			continue
		}
		if prev, ok := before[name]; ok {
			if prev != lv {
				e.Set(name, ToGo(L, lv))
			}
			continue
		}
		if old, ok := builtins[name]; ok && old == lv {
			continue
		}
		e.Set(name, ToGo(L, lv))
	}
	for name := range before {
		if _, ok := after[name]; !ok {
			e.Delete(name)
		}
	}

	return release, nil
}

// snapshotGlobals copies the string-keyed entries of the global table.
func snapshotGlobals(L *lua.LState) map[string]lua.LValue {
	out := map[string]lua.LValue{}
	g := L.G.Global
	for k, v := g.Next(lua.LNil); k != lua.LNil; k, v = g.Next(k) {
		if s, ok := k.(lua.LString); ok && v != lua.LNil {
			out[string(s)] = v
		}
	}
	return out
}

// orderedNames lists string-keyed globals in table traversal order.
func orderedNames(L *lua.LState) []string {
	var names []string
	g := L.G.Global
	for k, _ := g.Next(lua.LNil); k != lua.LNil; k, _ = g.Next(k) {
		if s, ok := k.(lua.LString); ok {
			names = append(names, string(s))
		}
	}
	return names
}
