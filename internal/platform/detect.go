package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect returns information about the running host.
//
// OS and architecture always come from the Go runtime, so they are known
// even when nothing else is. gopsutil's host.InfoWithContext supplies:
//   - Hostname and kernel version on every platform
//   - Distribution ID, family and version on Linux
//
// Graceful fallback: if gopsutil cannot read host details (containers
// without /etc/os-release, restricted /proc) Detect returns the runtime
// facts with no error. Configuration files can test platform.distro for
// nil to handle that case.
//
// A cancelled context is a hard failure and returns an error.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:      runtime.GOOS,
		Arch:    normalizeArch(runtime.GOARCH),
		ArchRaw: runtime.GOARCH,
	}

	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		// Check if context was cancelled - this is a hard failure
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		// Anything else: keep what runtime gave us
		return info, nil
	}

	info.Hostname = hi.Hostname
	info.Kernel = hi.KernelVersion
	// gopsutil fills Platform on macOS and Windows too ("darwin",
	// "Microsoft Windows ..."); only Linux distro data is exposed.
	if runtime.GOOS == "linux" {
		if p := normalizePlatform(hi.Platform); p != "" {
			info.Platform = p
			info.Family = mapFamily(hi.PlatformFamily)
			info.Version = normalizePlatform(hi.PlatformVersion)
		}
	}
	return info, nil
}
