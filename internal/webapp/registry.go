package webapp

import (
	"fmt"
	"sort"

	"github.com/ZebulonRouseFrantzich/appshell/internal/config"
)

// Registry holds an application's configuration.
type Registry struct {
	Name     string
	Settings map[string]any
	Routes   []config.Route
}

// NewRegistry builds a registry from a parsed application configuration.
func NewRegistry(cfg *config.AppConfig) *Registry {
	settings := make(map[string]any, len(cfg.Settings))
	for k, v := range cfg.Settings {
		settings[k] = v
	}
	routes := make([]config.Route, len(cfg.Routes))
	copy(routes, cfg.Routes)
	return &Registry{Name: cfg.Name, Settings: settings, Routes: routes}
}

// Setting returns the named setting.
func (r *Registry) Setting(name string) (any, bool) {
	v, ok := r.Settings[name]
	return v, ok
}

// SettingNames lists the setting names, sorted.
func (r *Registry) SettingNames() []string {
	names := make([]string, 0, len(r.Settings))
	for k := range r.Settings {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Route returns the route called name.
func (r *Registry) Route(name string) (config.Route, bool) {
	for _, rt := range r.Routes {
		if rt.Name == name {
			return rt, true
		}
	}
	return config.Route{}, false
}

func (r *Registry) String() string {
	return fmt.Sprintf("registry %q (%d settings, %d routes)", r.Name, len(r.Settings), len(r.Routes))
}
