// Package branding holds product naming and build identity shown in views.
package branding

import (
	"runtime/debug"
	"strings"
)

// AppName is the product name used in page titles.
const AppName = "Bookstore"

// version is stamped at link time:
//
//	go build -ldflags "-X github.com/louisbranch/bookstore/internal/platform/branding.version=v1.2.3"
var version = ""

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Version returns the build version: the link-time stamp when present, then
// the main module version recorded by the Go toolchain, then "dev".
func Version() string {
	if v := strings.TrimSpace(version); v != "" {
		return v
	}
	if info, ok := readBuildInfo(); ok && info != nil {
		if v := strings.TrimSpace(info.Main.Version); v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}
