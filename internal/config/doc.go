// Package config loads Lua application configuration files.
//
// A configuration file is evaluated in a sandboxed gopher-lua VM (no os, io,
// require, dofile, load*, or debug) with a read-only `platform` table
// injected. Two globals are understood:
//
//	apps = {
//	  main = {
//	    settings = { debug = true },
//	    routes = { { name = "home", path = "/", body = "Welcome" } },
//	    root = { title = "Site" },
//	  },
//	}
//	appshell = {
//	  greeting = "hello",
//	  setup = function(env) env.answer = 42 end,
//	}
//
// `apps` describes the web applications a bootstrap can build. Any other
// global table can be read as a Section, an ordered list of name/value items;
// the shell reads the one named "appshell".
//
// A loaded File keeps its Lua state open so that functions defined in the
// configuration, such as a setup hook, stay callable. Callers must Close it.
//
// Evaluation of the file respects context cancellation; when the context
// has no deadline a default five second limit applies.
package config
