package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ZebulonRouseFrantzich/appshell/internal/config"
	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
	"github.com/ZebulonRouseFrantzich/appshell/internal/luabridge"
)

// objectHelp describes the seeded variables.
var objectHelp = map[string]string{
	env.NameApp:         "The web application.",
	env.NameRoot:        "Root of the default resource tree.",
	env.NameRegistry:    "Active application registry.",
	env.NameRequest:     "Active request object.",
	env.NameRootFactory: "Default root factory used to create `root`.",
}

// BuildHelp renders the banner text listing the seeded variables and the
// custom variables declared in the configuration section.
func BuildHelp(items []env.Item) string {
	var sb strings.Builder
	sb.WriteString("Environment:")
	for _, name := range sortedKeys(objectHelp) {
		fmt.Fprintf(&sb, "\n  %-12s %s", name, objectHelp[name])
	}

	custom := map[string]string{}
	for _, it := range items {
		if it.Name == env.NameSetup {
			continue
		}
		custom[it.Name] = describe(it.Name, it.Value)
	}
	if len(custom) > 0 {
		sb.WriteString("\n\nCustom Variables:")
		for _, name := range sortedKeys(custom) {
			fmt.Fprintf(&sb, "\n  %-12s %s", name, custom[name])
		}
	}
	return sb.String()
}

func describe(name string, v any) string {
	if config.SensitiveName(name) {
		return "[REDACTED]"
	}
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return luabridge.Describe(v)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
