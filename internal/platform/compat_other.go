//go:build !linux

package platform

// IsEmulated32Bit is always false outside linux.
func IsEmulated32Bit() bool {
	return false
}
