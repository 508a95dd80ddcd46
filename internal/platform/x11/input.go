package x11

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/focusguard/internal/model"
	"github.com/mj1618/focusguard/internal/platform"
)

// moveStep is the interval between synthesized pointer motions.
const moveStep = 10 * time.Millisecond

func (c *Conn) initInput() error {
	c.inputOnce.Do(func() {
		if err := xtest.Init(c.Conn()); err != nil {
			c.inputErr = fmt.Errorf("XTEST extension is not available: %w", err)
			return
		}
		keybind.Initialize(c.XUtil)
	})
	return c.inputErr
}

func (c *Conn) fake(eventType, detail byte, x, y int16) error {
	err := xtest.FakeInputChecked(c.Conn(), eventType, detail, 0, c.RootWin(), x, y, 0).Check()
	if err != nil {
		return fmt.Errorf("unable to fake input event %d: %w", eventType, err)
	}
	return nil
}

func (c *Conn) keycode(name string) (xproto.Keycode, error) {
	codes := keybind.StrToKeycodes(c.XUtil, name)
	if len(codes) == 0 {
		return 0, fmt.Errorf("no keycode for keysym %q", name)
	}
	return codes[0], nil
}

// SendKeys focuses w and types text, pausing perKey after each character.
func (c *Conn) SendKeys(ctx context.Context, w model.WindowID, text string, perKey time.Duration) error {
	if err := c.initInput(); err != nil {
		return err
	}
	if err := c.SetInputFocus(ctx, w); err != nil {
		return err
	}
	shift, err := c.keycode("Shift_L")
	if err != nil {
		return err
	}

	for _, r := range text {
		name, shifted := keyName(r)
		if name == "" {
			return fmt.Errorf("cannot type %q", r)
		}
		code, err := c.keycode(name)
		if err != nil {
			return err
		}
		if shifted {
			if err := c.fake(xproto.KeyPress, byte(shift), 0, 0); err != nil {
				return err
			}
		}
		if err := c.fake(xproto.KeyPress, byte(code), 0, 0); err != nil {
			return err
		}
		if err := c.fake(xproto.KeyRelease, byte(code), 0, 0); err != nil {
			return err
		}
		if shifted {
			if err := c.fake(xproto.KeyRelease, byte(shift), 0, 0); err != nil {
				return err
			}
		}
		if err := sleep(ctx, perKey); err != nil {
			return err
		}
	}
	logger.Debugf(ctx, "typed %d characters into %s", len([]rune(text)), w)
	return nil
}

// rootPoint translates window coordinates to root coordinates.
func (c *Conn) rootPoint(w model.WindowID, x, y int) (int16, int16, error) {
	reply, err := xproto.TranslateCoordinates(c.Conn(), xproto.Window(w), c.RootWin(), int16(x), int16(y)).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("unable to translate coordinates of window %s: %w", w, err)
	}
	return reply.DstX, reply.DstY, nil
}

func (c *Conn) button(ctx context.Context, eventType byte, w model.WindowID, x, y int, button platform.MouseButton) error {
	if err := c.initInput(); err != nil {
		return err
	}
	rx, ry, err := c.rootPoint(w, x, y)
	if err != nil {
		return err
	}
	if err := c.fake(xproto.MotionNotify, 0, rx, ry); err != nil {
		return err
	}
	return c.fake(eventType, buttonDetail(button), rx, ry)
}

// MouseDown presses button at (x, y) of w.
func (c *Conn) MouseDown(ctx context.Context, w model.WindowID, x, y int, button platform.MouseButton) error {
	return c.button(ctx, xproto.ButtonPress, w, x, y, button)
}

// MouseUp releases button at (x, y) of w.
func (c *Conn) MouseUp(ctx context.Context, w model.WindowID, x, y int, button platform.MouseButton) error {
	return c.button(ctx, xproto.ButtonRelease, w, x, y, button)
}

// Click presses and releases button at (x, y) of w.
func (c *Conn) Click(ctx context.Context, w model.WindowID, x, y int, button platform.MouseButton) error {
	if err := c.MouseDown(ctx, w, x, y, button); err != nil {
		return err
	}
	return c.MouseUp(ctx, w, x, y, button)
}

// MouseMove moves the pointer in a straight line across w over duration.
func (c *Conn) MouseMove(ctx context.Context, w model.WindowID, duration time.Duration, fromX, fromY, toX, toY int) error {
	if err := c.initInput(); err != nil {
		return err
	}
	for _, p := range movePath(duration, fromX, fromY, toX, toY) {
		rx, ry, err := c.rootPoint(w, p[0], p[1])
		if err != nil {
			return err
		}
		if err := c.fake(xproto.MotionNotify, 0, rx, ry); err != nil {
			return err
		}
		if err := sleep(ctx, moveStep); err != nil {
			return err
		}
	}
	return nil
}

// movePath returns the points of a linear move, one per moveStep, ending
// exactly at (toX, toY).
func movePath(duration time.Duration, fromX, fromY, toX, toY int) [][2]int {
	steps := int(duration / moveStep)
	if steps < 1 {
		steps = 1
	}
	path := make([][2]int, 0, steps)
	for i := 1; i <= steps; i++ {
		path = append(path, [2]int{
			fromX + (toX-fromX)*i/steps,
			fromY + (toY-fromY)*i/steps,
		})
	}
	return path
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
