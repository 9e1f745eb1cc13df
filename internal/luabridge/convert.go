// Package luabridge moves values between Go and gopher-lua states.
//
// Plain data (nil, booleans, numbers, strings, tables) is copied. Lua
// functions become *Function values that can be called from Go, and Go
// values without a Lua equivalent are wrapped in userdata whose exported
// fields and methods are reachable from Lua. An *env.Env is exposed as a
// live proxy, so a Lua setup hook writing `env.answer = 42` changes the Go
// namespace directly.
package luabridge

import (
	"fmt"
	"reflect"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
)

// maxDepth bounds table conversion so self-referencing tables terminate.
const maxDepth = 32

// ToGo converts a Lua value into a Go value.
func ToGo(L *lua.LState, lv lua.LValue) any {
	return toGo(L, lv, 0)
}

func toGo(L *lua.LState, lv lua.LValue, depth int) any {
	switch v := lv.(type) {
	case nil, *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if depth >= maxDepth {
			return nil
		}
		return tableToGo(L, v, depth+1)
	case *lua.LFunction:
		return &Function{L: L, fn: v}
	case *lua.LUserData:
		return v.Value
	default:
		return lv
	}
}

// tableToGo returns a []any for sequences and a map[string]any otherwise.
func tableToGo(L *lua.LState, tb *lua.LTable, depth int) any {
	var (
		count int
		keys  []lua.LValue
		vals  []lua.LValue
	)
	for k, v := tb.Next(lua.LNil); k != lua.LNil; k, v = tb.Next(k) {
		count++
		keys = append(keys, k)
		vals = append(vals, v)
	}

	if n := tb.Len(); n > 0 && n == count {
		out := make([]any, n)
		for i := 1; i <= n; i++ {
			out[i-1] = toGo(L, tb.RawGetInt(i), depth)
		}
		return out
	}

	out := make(map[string]any, count)
	for i, k := range keys {
		out[keyString(k)] = toGo(L, vals[i], depth)
	}
	return out
}

func keyString(k lua.LValue) string {
	if n, ok := k.(lua.LNumber); ok {
		return strconv.FormatFloat(float64(n), 'f', -1, 64)
	}
	return k.String()
}

// ToLua converts a Go value into a value usable in L.
func ToLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return x
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case float64:
		return lua.LNumber(x)
	case int:
		return lua.LNumber(x)
	case *Function:
		if x.L == L {
			return x.fn
		}
		return wrapCallable(L, x)
	case *env.Env:
		return newEnvProxy(L, x)
	case env.Callable:
		return wrapCallable(L, x)
	case map[string]any:
		tb := L.NewTable()
		for k, val := range x {
			tb.RawSetString(k, ToLua(L, val))
		}
		return tb
	case []any:
		tb := L.NewTable()
		for _, val := range x {
			tb.Append(ToLua(L, val))
		}
		return tb
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			return lua.LNil
		}
	case reflect.Func:
		if rv.IsNil() {
			return lua.LNil
		}
		return L.NewFunction(func(L *lua.LState) int {
			return callReflect(L, rv, 1)
		})
	}
	return newObject(L, v)
}

// convertArg converts a Lua argument to a Go value of type t.
func convertArg(L *lua.LState, lv lua.LValue, t reflect.Type) (reflect.Value, error) {
	g := ToGo(L, lv)
	if g == nil {
		return reflect.Zero(t), nil
	}

	gv := reflect.ValueOf(g)
	if gv.Type().AssignableTo(t) {
		return gv, nil
	}
	if isNumeric(gv.Kind()) && isNumeric(t.Kind()) {
		return gv.Convert(t), nil
	}
	if gv.Kind() == reflect.String && t.Kind() == reflect.String {
		return gv.Convert(t), nil
	}
	if t == reflect.TypeOf(env.SetupFunc(nil)) {
		if fn, ok := env.AsSetup(g); ok {
			return reflect.ValueOf(fn), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", lv.Type(), t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
