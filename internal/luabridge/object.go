package luabridge

import (
	"fmt"
	"reflect"

	lua "github.com/yuin/gopher-lua"
)

const objectTypeName = "appshell.object"

// newObject wraps an arbitrary Go value in userdata. Exported fields, map
// entries, slice elements and methods are reachable with the usual Lua
// indexing syntax; methods work with both `obj.M(x)` and `obj:M(x)`.
func newObject(L *lua.LState, v any) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = v
	L.SetMetatable(ud, objectMetatable(L))
	return ud
}

func objectMetatable(L *lua.LState) *lua.LTable {
	if mt, ok := L.GetTypeMetatable(objectTypeName).(*lua.LTable); ok {
		return mt
	}
	mt := L.NewTypeMetatable(objectTypeName)
	L.SetFuncs(mt, map[string]lua.LGFunction{
		"__index":    objectIndex,
		"__newindex": objectNewIndex,
		"__tostring": objectToString,
		"__len":      objectLen,
	})
	return mt
}

func objectIndex(L *lua.LState) int {
	ud := L.CheckUserData(1)
	key := L.Get(2)
	rv := reflect.ValueOf(ud.Value)

	if name, ok := key.(lua.LString); ok {
		if m := rv.MethodByName(string(name)); m.IsValid() {
			L.Push(methodFunc(L, ud, m))
			return 1
		}
	}

	base := reflect.Indirect(rv)
	switch base.Kind() {
	case reflect.Struct:
		if name, ok := key.(lua.LString); ok {
			if f, ok := base.Type().FieldByName(string(name)); ok && f.IsExported() {
				L.Push(ToLua(L, base.FieldByIndex(f.Index).Interface()))
				return 1
			}
		}
	case reflect.Map:
		if base.Type().Key().Kind() == reflect.String {
			if name, ok := key.(lua.LString); ok {
				mv := base.MapIndex(reflect.ValueOf(string(name)).Convert(base.Type().Key()))
				if mv.IsValid() {
					L.Push(ToLua(L, mv.Interface()))
					return 1
				}
			}
		}
	case reflect.Slice, reflect.Array:
		if n, ok := key.(lua.LNumber); ok {
			i := int(n) - 1
			if i >= 0 && i < base.Len() {
				L.Push(ToLua(L, base.Index(i).Interface()))
				return 1
			}
		}
	}

	L.Push(lua.LNil)
	return 1
}

func objectNewIndex(L *lua.LState) int {
	ud := L.CheckUserData(1)
	name := L.CheckString(2)
	value := L.Get(3)

	base := reflect.Indirect(reflect.ValueOf(ud.Value))
	switch base.Kind() {
	case reflect.Struct:
		f := base.FieldByName(name)
		if !f.IsValid() || !f.CanSet() {
			L.RaiseError("cannot set field %q on %T", name, ud.Value)
			return 0
		}
		v, err := convertArg(L, value, f.Type())
		if err != nil {
			L.RaiseError("field %q: %s", name, err.Error())
			return 0
		}
		f.Set(v)
	case reflect.Map:
		kt := base.Type().Key()
		if kt.Kind() != reflect.String || base.IsNil() {
			L.RaiseError("cannot set key %q on %T", name, ud.Value)
			return 0
		}
		k := reflect.ValueOf(name).Convert(kt)
		if value == lua.LNil {
			base.SetMapIndex(k, reflect.Value{})
			return 0
		}
		v, err := convertArg(L, value, base.Type().Elem())
		if err != nil {
			L.RaiseError("key %q: %s", name, err.Error())
			return 0
		}
		base.SetMapIndex(k, v)
	default:
		L.RaiseError("cannot set %q on %T", name, ud.Value)
	}
	return 0
}

func objectToString(L *lua.LState) int {
	ud := L.CheckUserData(1)
	L.Push(lua.LString(Describe(ud.Value)))
	return 1
}

func objectLen(L *lua.LState) int {
	ud := L.CheckUserData(1)
	base := reflect.Indirect(reflect.ValueOf(ud.Value))
	switch base.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		L.Push(lua.LNumber(base.Len()))
	default:
		L.Push(lua.LNumber(0))
	}
	return 1
}

// methodFunc binds a method value. When called with the colon syntax the
// receiver arrives as the first argument and is skipped.
func methodFunc(L *lua.LState, recv *lua.LUserData, m reflect.Value) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		first := 1
		if L.GetTop() >= 1 && L.Get(1) == recv {
			first = 2
		}
		return callReflect(L, m, first)
	})
}

// Describe returns a short human-readable description of a Go value.
func Describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case fmt.Stringer:
		return x.String()
	case string:
		return x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return fmt.Sprint(v)
	case reflect.Map:
		return fmt.Sprintf("%T with %d entries", v, rv.Len())
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("%T with %d elements", v, rv.Len())
	case reflect.Func:
		return fmt.Sprintf("%T", v)
	}
	return fmt.Sprintf("<%T>", v)
}
