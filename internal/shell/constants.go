package shell

// Names of the shells shipped with appshell.
const (
	// NameReadline is the Lua shell with line editing and history.
	NameReadline = "readline"
	// NameYaegi is the Go interpreter shell.
	NameYaegi = "yaegi"
	// NameLua is the plain Lua shell, which works without a terminal.
	NameLua = "lua"
)

// DefaultPreferred is the priority order used when no shell is requested.
var DefaultPreferred = []string{NameReadline, NameYaegi}
