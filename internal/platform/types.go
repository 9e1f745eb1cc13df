// Package platform detects the host the shell runs on and exposes it to Lua
// configuration files as the read-only `platform` table.
//
// Detection uses runtime for OS and architecture and gopsutil for the
// distribution, hostname and kernel. Failures to read distribution details
// are not fatal; the basic OS/arch facts are always available.
package platform

import (
	"context"
	"fmt"
	"strings"
)

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
type Info struct {
	OS       string // "linux", "darwin", "windows"
	Arch     string // normalized, e.g. "amd64", "arm64"
	ArchRaw  string // original GOARCH
	Platform string // distro ID (Linux only, e.g., "ubuntu", "arch")
	Family   string // canonical family (e.g., "debian", "rhel", "arch")
	Version  string // distro version (Linux only, e.g., "22.04")
	Hostname string
	Kernel   string
}

// IsLinux returns true if the platform is Linux.
// The IsXxx helpers back the matching platform.is_xxx Lua fields.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// HasDistro reports whether Linux distribution details were detected.
func (i *Info) HasDistro() bool {
	return i.IsLinux() && i.Platform != ""
}

// String renders the info for the shell banner, e.g.
// "linux/amd64 (ubuntu 22.04) on devbox".
func (i *Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s/%s", i.OS, i.Arch)
	if i.HasDistro() {
		sb.WriteString(" (" + i.Platform)
		if i.Version != "" {
			sb.WriteString(" " + i.Version)
		}
		sb.WriteString(")")
	}
	if i.Hostname != "" {
		sb.WriteString(" on " + i.Hostname)
	}
	return sb.String()
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. It is used where detection must be
// deterministic, such as tests and embedded configurations. Err, when set,
// is returned alongside Info.
type StaticDetector struct {
	Info *Info
	Err  error
}

// Detect returns the configured info and error.
func (s StaticDetector) Detect(ctx context.Context) (*Info, error) {
	return s.Info, s.Err
}
