package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/facebookincubator/go-belt/tool/logger"
)

const (
	DefaultNativeLibrary = "/usr/lib/libX11.so.6"
	DefaultCompatLibrary = "/usr/lib32/libX11.so.6"

	// DefaultMultiarchRoot holds the per-architecture library directories of
	// Debian-style distributions.
	DefaultMultiarchRoot = "/usr/lib"
)

var multiarchTriplets = map[string]string{
	"amd64":   "x86_64-linux-gnu",
	"386":     "i386-linux-gnu",
	"arm64":   "aarch64-linux-gnu",
	"arm":     "arm-linux-gnueabihf",
	"ppc64le": "powerpc64le-linux-gnu",
	"riscv64": "riscv64-linux-gnu",
	"s390x":   "s390x-linux-gnu",
}

// LibraryPolicy picks which of two windowing library installs a client uses:
// the native one, or the 32-bit one when a 32-bit process runs on a 64-bit
// kernel. An empty path skips the existence check for that case.
type LibraryPolicy struct {
	Native string
	Compat string

	// MultiarchRoot is where the multiarch fallback is looked up; empty
	// means DefaultMultiarchRoot.
	MultiarchRoot string

	// Emulated32Bit overrides host detection; nil means IsEmulated32Bit.
	Emulated32Bit func() bool
}

// DefaultLibraryPolicy returns the policy with the conventional install paths.
func DefaultLibraryPolicy() LibraryPolicy {
	return LibraryPolicy{
		Native: DefaultNativeLibrary,
		Compat: DefaultCompatLibrary,
	}
}

// Path returns the library path that applies to the running process.
func (p LibraryPolicy) Path() string {
	detect := p.Emulated32Bit
	if detect == nil {
		detect = IsEmulated32Bit
	}
	if detect() {
		return p.Compat
	}
	return p.Native
}

// Candidates returns the paths tried for the running process: Path, then
// the file of the same name in the multiarch directory of the running
// architecture.
func (p LibraryPolicy) Candidates() []string {
	path := p.Path()
	if path == "" {
		return nil
	}
	paths := []string{path}
	triplet, ok := multiarchTriplets[runtime.GOARCH]
	if !ok {
		return paths
	}
	root := p.MultiarchRoot
	if root == "" {
		root = DefaultMultiarchRoot
	}
	if alt := filepath.Join(root, triplet, filepath.Base(path)); alt != path {
		paths = append(paths, alt)
	}
	return paths
}

// Resolve returns the first candidate that exists. An empty Path resolves to
// "" without any check.
func (p LibraryPolicy) Resolve() (string, error) {
	candidates := p.Candidates()
	if len(candidates) == 0 {
		return "", nil
	}
	var firstErr error
	for _, path := range candidates {
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", fmt.Errorf("unable to resolve windowing library %q (set library.native or library.compat in the config file): %w", candidates[0], firstErr)
}

// Open resolves the library path and builds a provider for it. A missing
// library is an error.
func (p LibraryPolicy) Open(ctx context.Context, opts ProviderOptions) (*Provider, error) {
	path, err := p.Resolve()
	if err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "resolved windowing library %q", path)
	opts.Library = path
	provider, err := NewProvider(ctx, opts)
	if err != nil {
		return nil, err
	}
	if provider.Library == "" {
		provider.Library = path
	}
	return provider, nil
}
