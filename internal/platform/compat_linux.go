//go:build linux

package platform

import (
	"runtime"
	"strings"

	"golang.org/x/sys/unix"
)

// IsEmulated32Bit reports whether a 32-bit x86 binary is running on an
// x86_64 kernel. A failing uname counts as native.
func IsEmulated32Bit() bool {
	if runtime.GOARCH != "386" {
		return false
	}
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return false
	}
	return strings.HasPrefix(unix.ByteSliceToString(u.Machine[:]), "x86_64")
}
