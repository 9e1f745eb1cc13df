package config

// Lua schema globals and field names.
const (
	luaGlobalApps = "apps"

	luaFieldSettings = "settings"
	luaFieldRoutes   = "routes"
	luaFieldRoot     = "root"
	luaFieldName     = "name"
	luaFieldPath     = "path"
	luaFieldMethod   = "method"
	luaFieldStatus   = "status"
	luaFieldBody     = "body"
)

// SectionName is the global table holding the shell's custom variables.
const SectionName = "appshell"

// Resource limits for configuration files.
const (
	MaxConfigSize = 10 * 1024 * 1024
	MaxRouteCount = 1000
)
