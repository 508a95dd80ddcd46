package signal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// DefaultMarkerPath is where the browser driver drops the switch marker.
const DefaultMarkerPath = "/tmp/switch_window_started"

// FileMarker reads the switch marker file. Existence of the file means a
// switch started; its content is a short payload, prefixed with CloseTag
// when a window is closing. Reading deletes the file.
type FileMarker struct {
	Path     string
	CloseTag string
	// MaxBytes bounds how much of the payload is read.
	MaxBytes int
}

var _ Reader = (*FileMarker)(nil)

// NewFileMarker returns a marker reader with default tag and bound.
func NewFileMarker(path string) *FileMarker {
	if path == "" {
		path = DefaultMarkerPath
	}
	return &FileMarker{
		Path:     path,
		CloseTag: DefaultCloseTag,
		MaxBytes: DefaultMaxBytes,
	}
}

func (m *FileMarker) Read(ctx context.Context) (Signal, bool) {
	f, err := os.Open(m.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Debugf(ctx, "switch marker %q unreadable: %v", m.Path, err)
		}
		return Signal{}, false
	}
	limit := m.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	buf, readErr := io.ReadAll(io.LimitReader(f, int64(limit)))
	f.Close()

	// Whoever removes the file owns the signal. Losing the race to another
	// reader is the same as never having seen it.
	if err := os.Remove(m.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Signal{}, false
		}
		logger.Warnf(ctx, "unable to remove switch marker %q: %v", m.Path, err)
	}
	if readErr != nil {
		logger.Debugf(ctx, "partial read of switch marker %q: %v", m.Path, readErr)
	}

	sig := Parse(string(buf), m.CloseTag)
	logger.Debugf(ctx, "switch marker consumed: %q (close: %v)", sig.Payload, sig.Close)
	return sig, true
}

func (m *FileMarker) Discard(ctx context.Context) {
	if err := os.Remove(m.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Debugf(ctx, "unable to discard switch marker %q: %v", m.Path, err)
	}
}

// WriteMarker creates the marker file announcing a switch.
func WriteMarker(path, reason string, isClose bool, closeTag string) error {
	if path == "" {
		path = DefaultMarkerPath
	}
	payload := Format(reason, isClose, closeTag)
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		return fmt.Errorf("unable to write switch marker %q: %w", path, err)
	}
	return nil
}
