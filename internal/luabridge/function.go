package luabridge

import (
	"fmt"
	"reflect"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
)

// Function is a Lua function that can be called from Go. It stays valid
// until the Lua state it came from is closed.
type Function struct {
	L  *lua.LState
	fn *lua.LFunction
}

// Call invokes the function with args converted to Lua and returns its
// results converted back to Go.
func (f *Function) Call(args ...any) ([]any, error) {
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = ToLua(f.L, a)
	}

	top := f.L.GetTop()
	if err := f.L.CallByParam(lua.P{Fn: f.fn, NRet: lua.MultRet, Protect: true}, largs...); err != nil {
		f.L.SetTop(top)
		return nil, err
	}

	n := f.L.GetTop() - top
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = ToGo(f.L, f.L.Get(top+1+i))
	}
	f.L.SetTop(top)
	return out, nil
}

// String describes the function for banners and listings.
func (f *Function) String() string {
	if f.fn.Proto != nil && f.fn.Proto.SourceName != "" {
		return fmt.Sprintf("function defined in %s:%d", f.fn.Proto.SourceName, f.fn.Proto.LineDefined)
	}
	return "function"
}

// wrapCallable exposes a Go callable to L as a Lua function.
func wrapCallable(L *lua.LState, c env.Callable) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		args := make([]any, top)
		for i := 1; i <= top; i++ {
			args[i-1] = ToGo(L, L.Get(i))
		}
		results, err := c.Call(args...)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		for _, r := range results {
			L.Push(ToLua(L, r))
		}
		return len(results)
	})
}

// callReflect calls fn with the Lua arguments starting at stack index first
// and pushes its results. A trailing non-nil error result is raised as a Lua
// error.
func callReflect(L *lua.LState, fn reflect.Value, first int) int {
	t := fn.Type()
	top := L.GetTop()

	in := make([]reflect.Value, 0, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		idx := first + i
		pt := t.In(i)
		if t.IsVariadic() && i == t.NumIn()-1 {
			for j := idx; j <= top; j++ {
				v, err := convertArg(L, L.Get(j), pt.Elem())
				if err != nil {
					L.ArgError(j, err.Error())
				}
				in = append(in, v)
			}
			break
		}

		lv := lua.LValue(lua.LNil)
		if idx <= top {
			lv = L.Get(idx)
		}
		v, err := convertArg(L, lv, pt)
		if err != nil {
			L.ArgError(idx, err.Error())
		}
		in = append(in, v)
	}

	out, err := safeCall(fn, in)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}

	errType := reflect.TypeOf((*error)(nil)).Elem()
	if n := len(out); n > 0 && t.Out(n-1) == errType {
		if e, _ := out[n-1].Interface().(error); e != nil {
			L.RaiseError("%s", e.Error())
			return 0
		}
		out = out[:n-1]
	}

	for _, r := range out {
		L.Push(ToLua(L, r.Interface()))
	}
	return len(out)
}

// safeCall turns a panic in the called Go function into an error.
func safeCall(fn reflect.Value, in []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn.Call(in), nil
}
