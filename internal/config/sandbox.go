package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxedGlobals are removed from every configuration VM.
//
// A configuration file describes applications and their routes. It is
// evaluated before any user code runs, often from a path supplied on the
// command line, so it must not be able to:
//   - Execute system commands (os.execute, os.exit)
//   - Read or write files (io.open, io.lines, io.write)
//   - Read the process environment (os.getenv)
//   - Load other code from disk or strings (require, dofile, loadfile, load, loadstring)
//   - Inspect or patch the VM through the debug library
var sandboxedGlobals = []string{
	// Remove os library completely (os.execute, os.exit, os.getenv, etc.)
	"os",
	// Remove io library completely (io.open, io.popen, io.lines, etc.)
	"io",
	// Module loading would bypass the sandbox via package.loaders
	"require",
	// File and string loaders
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	// debug.setmetatable and friends can unprotect the platform table
	"debug",
}

// sandboxLuaVM removes dangerous globals from L.
//
// Safe libraries stay available:
//   - string (string manipulation)
//   - table (table manipulation)
//   - math (arithmetic)
//   - the basic functions (print, pairs, ipairs, type, tostring, error, pcall, ...)
//
// This must run before any configuration code is loaded into L.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range sandboxedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a new Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	sandboxLuaVM(L)
	return L
}
