//go:build !noyaegi

package main

import (
	"github.com/ZebulonRouseFrantzich/appshell/internal/platform"
	"github.com/ZebulonRouseFrantzich/appshell/internal/shell"
	"github.com/ZebulonRouseFrantzich/appshell/internal/shell/goshell"
)

func init() {
	shellPlugins = append(shellPlugins, func(reg *shell.Registry, streams shell.IO, _ *platform.Info) {
		reg.Register(shell.NameYaegi, goshell.Factory(streams))
	})
}
