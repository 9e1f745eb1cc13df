package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
	"github.com/ZebulonRouseFrantzich/appshell/internal/luabridge"
)

// File is an evaluated configuration file.
type File struct {
	Path string
	L    *lua.LState

	logger    Logger
	closeOnce sync.Once
}

// Close releases the Lua state. Values taken from the file that wrap Lua
// functions stop working afterwards.
func (f *File) Close() {
	f.closeOnce.Do(func() {
		if f.L != nil {
			f.L.Close()
		}
	})
}

// Section returns the items of the global table called name, in table
// order. A missing or nil global yields an empty section.
func (f *File) Section(name string) (*Section, error) {
	s := &Section{Name: name, file: f}

	lv := f.L.GetGlobal(name)
	// Only string keys name variables; array entries are skipped with a warning
	switch tb := lv.(type) {
	case *lua.LNilType:
		return s, nil
	case *lua.LTable:
		for k, v := tb.Next(lua.LNil); k != lua.LNil; k, v = tb.Next(k) {
			key, ok := k.(lua.LString)
			if !ok {
				f.logger.Warn("ignoring non-string key in section", "section", name, "key", k.String())
				continue
			}
			s.Items = append(s.Items, env.Item{Name: string(key), Value: luabridge.ToGo(f.L, v)})
		}
		return s, nil
	default:
		return nil, &ParseError{
			Message: fmt.Sprintf("invalid '%s' section", name),
			Detail:  fmt.Sprintf("expected table, got %s", lv.Type()),
		}
	}
}

// Apps lists the application names declared under `apps`, sorted.
func (f *File) Apps() []string {
	tb, ok := f.L.GetGlobal(luaGlobalApps).(*lua.LTable)
	if !ok {
		return nil
	}
	var names []string
	for k, _ := tb.Next(lua.LNil); k != lua.LNil; k, _ = tb.Next(k) {
		if s, ok := k.(lua.LString); ok {
			names = append(names, string(s))
		}
	}
	sort.Strings(names)
	return names
}

// App extracts and validates the application called name.
//
// Missing `settings` and `root` fields become empty maps and a missing
// `routes` field becomes no routes. Route defaults (GET, 200) are applied
// before validation, so a ValidationError always refers to the effective
// values.
func (f *File) App(name string) (*AppConfig, error) {
	apps, ok := f.L.GetGlobal(luaGlobalApps).(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "missing or invalid 'apps' table",
			Detail:  fmt.Sprintf("expected table, got %s", f.L.GetGlobal(luaGlobalApps).Type()),
		}
	}

	tb, ok := apps.RawGetString(name).(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("no application named %q", name),
			Detail:  fmt.Sprintf("%s declares: %s", f.Path, strings.Join(f.Apps(), ", ")),
		}
	}

	app := &AppConfig{Name: name}
	var err error
	if app.Settings, err = f.namedTable(tb, luaFieldSettings, name); err != nil {
		return nil, err
	}
	if app.Root, err = f.namedTable(tb, luaFieldRoot, name); err != nil {
		return nil, err
	}
	if app.Routes, err = extractRoutes(tb.RawGetString(luaFieldRoutes), name); err != nil {
		return nil, err
	}

	if err := app.Validate(); err != nil {
		return nil, err
	}
	return app, nil
}

// namedTable converts field of tb into a map. A missing field is an empty map.
func (f *File) namedTable(tb *lua.LTable, field, app string) (map[string]any, error) {
	lv := tb.RawGetString(field)
	if lv == lua.LNil {
		return map[string]any{}, nil
	}
	if _, ok := lv.(*lua.LTable); ok {
		if m, ok := luabridge.ToGo(f.L, lv).(map[string]any); ok {
			return m, nil
		}
	}
	return nil, &ValidationError{
		Field:   fmt.Sprintf("apps.%s.%s", app, field),
		Message: "must be a table with named fields",
	}
}

// extractRoutes reads the array part of lv. Keys outside 1..#lv are ignored,
// as are unknown fields inside each route table.
func extractRoutes(lv lua.LValue, app string) ([]Route, error) {
	if lv == lua.LNil {
		return nil, nil
	}
	tb, ok := lv.(*lua.LTable)
	if !ok {
		return nil, &ValidationError{Field: fmt.Sprintf("apps.%s.routes", app), Message: "must be a list of tables"}
	}

	var routes []Route
	for i := 1; i <= tb.Len(); i++ {
		rt, ok := tb.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("apps.%s.routes[%d]", app, i),
				Message: "must be a table",
			}
		}
		r := Route{
			Name:   stringField(rt, luaFieldName),
			Path:   stringField(rt, luaFieldPath),
			Method: stringField(rt, luaFieldMethod),
			Body:   stringField(rt, luaFieldBody),
		}
		// Non-numeric status is left at zero and defaulted below
		if n, ok := rt.RawGetString(luaFieldStatus).(lua.LNumber); ok {
			r.Status = int(n)
		}
		r.applyDefaults()
		routes = append(routes, r)
	}
	return routes, nil
}

func stringField(tb *lua.LTable, field string) string {
	if s, ok := tb.RawGetString(field).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// Eval evaluates a Lua expression in the file's global environment.
func (f *File) Eval(expr string) (any, error) {
	fn, err := f.L.LoadString("return " + expr)
	if err != nil {
		return nil, &ParseError{Message: "invalid expression", Detail: err.Error()}
	}
	f.L.Push(fn)
	if err := f.L.PCall(0, 1, nil); err != nil {
		return nil, &ParseError{Message: "expression failed", Detail: err.Error()}
	}
	v := f.L.Get(-1)
	f.L.Pop(1)
	return luabridge.ToGo(f.L, v), nil
}

// Section is an ordered list of name/value items read from a configuration
// table. Values that are Lua functions remain bound to the file.
type Section struct {
	Name  string
	Items []env.Item

	file *File
}

// NewSection builds a section that is not backed by a file.
func NewSection(name string, items []env.Item) *Section {
	return &Section{Name: name, Items: items}
}

// Resolve evaluates expr against the file the section came from.
func (s *Section) Resolve(expr string) (any, error) {
	if s.file == nil {
		return nil, fmt.Errorf("cannot resolve %q: section %q has no configuration file", expr, s.Name)
	}
	return s.file.Eval(expr)
}

// Close releases the underlying file, if any.
func (s *Section) Close() {
	if s.file != nil {
		s.file.Close()
	}
}
