//go:build linux

package x11

import "github.com/mj1618/focusguard/internal/platform"

func init() {
	platform.NewProviderFunc = NewProvider
}
