package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mj1618/focusguard/internal/model"
	"github.com/mj1618/focusguard/internal/platform"
)

// windowActive selects the window the window manager reports as active.
const windowActive = "active"

// openProvider connects to the configured display through the library policy.
func openProvider(ctx context.Context) (*platform.Provider, error) {
	return cfg.LibraryPolicy().Open(ctx, platform.ProviderOptions{Display: cfg.Display})
}

// resolveWindow turns a --window value into an id. An empty value or
// "active" asks the window manager.
func resolveWindow(ctx context.Context, provider *platform.Provider, s string) (model.WindowID, error) {
	s = strings.TrimSpace(s)
	if s != "" && !strings.EqualFold(s, windowActive) {
		return model.ParseWindowID(s)
	}
	if provider.Active == nil {
		return model.None, fmt.Errorf("active window lookup not available on this platform; pass a window id")
	}
	return provider.Active.ActiveWindow(ctx)
}

// Parameter extraction helpers for MCP tool arguments

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		// Numbers arrive as float64 from JSON
		if f, ok := v.(float64); ok && f == float64(int64(f)) {
			return fmt.Sprintf("%d", int64(f))
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
