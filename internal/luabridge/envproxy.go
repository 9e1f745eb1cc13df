package luabridge

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
)

const envTypeName = "appshell.env"

// newEnvProxy exposes e to Lua. Reads and writes go straight through to the
// environment, so `env.answer = 42` inside a setup function is visible to
// the shell that runs afterwards. Assigning nil removes the name.
func newEnvProxy(L *lua.LState, e *env.Env) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = e
	L.SetMetatable(ud, envMetatable(L))
	return ud
}

func envMetatable(L *lua.LState) *lua.LTable {
	if mt, ok := L.GetTypeMetatable(envTypeName).(*lua.LTable); ok {
		return mt
	}
	mt := L.NewTypeMetatable(envTypeName)
	L.SetFuncs(mt, map[string]lua.LGFunction{
		"__index":    envIndex,
		"__newindex": envNewIndex,
		"__len":      envLen,
		"__tostring": envToString,
	})
	return mt
}

func checkEnv(L *lua.LState) *env.Env {
	ud := L.CheckUserData(1)
	e, ok := ud.Value.(*env.Env)
	if !ok {
		L.ArgError(1, "environment expected")
	}
	return e
}

func envIndex(L *lua.LState) int {
	e := checkEnv(L)
	name := L.CheckString(2)
	v, ok := e.Get(name)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(ToLua(L, v))
	return 1
}

func envNewIndex(L *lua.LState) int {
	e := checkEnv(L)
	name := L.CheckString(2)
	value := L.Get(3)
	if value == lua.LNil {
		e.Delete(name)
		return 0
	}
	e.Set(name, ToGo(L, value))
	return 0
}

func envLen(L *lua.LState) int {
	L.Push(lua.LNumber(checkEnv(L).Len()))
	return 1
}

func envToString(L *lua.LState) int {
	L.Push(lua.LString(fmt.Sprintf("environment %v", checkEnv(L).Keys())))
	return 1
}
