package main

import (
	"github.com/ZebulonRouseFrantzich/appshell/internal/platform"
	"github.com/ZebulonRouseFrantzich/appshell/internal/shell"
	"github.com/ZebulonRouseFrantzich/appshell/internal/shell/luashell"
)

// shellPlugin registers an optional shell. Plugins add themselves from
// build-tagged files.
type shellPlugin func(reg *shell.Registry, streams shell.IO, info *platform.Info)

var shellPlugins []shellPlugin

// registerShells populates reg with every shell compiled into the binary.
func registerShells(reg *shell.Registry, streams shell.IO, info *platform.Info) {
	reg.Register(shell.NameReadline, luashell.ReadlineFactory(streams, luashell.WithPlatform(info)))
	for _, p := range shellPlugins {
		p(reg, streams, info)
	}
	reg.Register(shell.NameLua, luashell.Factory(streams, luashell.WithPlatform(info)))
}
