package cmd

import (
	"context"
	"fmt"

	"github.com/mj1618/focusguard/internal/model"
	"github.com/mj1618/focusguard/internal/output"
	"github.com/mj1618/focusguard/internal/platform"
	"github.com/spf13/cobra"
)

// ClickResult is the output of a click.
type ClickResult struct {
	OK     bool           `yaml:"ok"     json:"ok"`
	Action string         `yaml:"action" json:"action"`
	Window model.WindowID `yaml:"window" json:"window"`
	X      int            `yaml:"x"      json:"x"`
	Y      int            `yaml:"y"      json:"y"`
	Button string         `yaml:"button" json:"button"`
}

type clickOptions struct {
	X, Y    int
	Button  platform.MouseButton
	Press   bool
	Release bool
}

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Click at coordinates of a window",
	Long:  "Press and release a mouse button at coordinates relative to a window's origin. --press or --release sends only half of the click.",
	Args:  cobra.NoArgs,
	RunE:  runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	clickCmd.Flags().String("window", windowActive, "Window id, or \"active\"")
	clickCmd.Flags().Int("x", 0, "X coordinate relative to the window")
	clickCmd.Flags().Int("y", 0, "Y coordinate relative to the window")
	clickCmd.Flags().String("button", "left", "Mouse button: left, right, middle")
	clickCmd.Flags().Bool("press", false, "Only press the button")
	clickCmd.Flags().Bool("release", false, "Only release the button")
}

func runClick(cmd *cobra.Command, args []string) error {
	window, _ := cmd.Flags().GetString("window")
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	buttonStr, _ := cmd.Flags().GetString("button")
	press, _ := cmd.Flags().GetBool("press")
	release, _ := cmd.Flags().GetBool("release")

	button, err := platform.ParseMouseButton(buttonStr)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	provider, err := openProvider(ctx)
	if err != nil {
		return err
	}
	defer provider.Close()
	if provider.Inputter == nil {
		return fmt.Errorf("input simulation not available on this platform")
	}
	w, err := resolveWindow(ctx, provider, window)
	if err != nil {
		return err
	}

	result, err := executeClick(ctx, provider.Inputter, w, clickOptions{X: x, Y: y, Button: button, Press: press, Release: release})
	if err != nil {
		return err
	}
	return output.Print(result)
}

func executeClick(ctx context.Context, inputter platform.Inputter, w model.WindowID, opts clickOptions) (ClickResult, error) {
	result := ClickResult{Window: w, X: opts.X, Y: opts.Y, Button: opts.Button.String()}
	var err error
	switch {
	case opts.Press && opts.Release:
		return result, fmt.Errorf("--press and --release are mutually exclusive")
	case opts.Press:
		result.Action = "mouse_down"
		err = inputter.MouseDown(ctx, w, opts.X, opts.Y, opts.Button)
	case opts.Release:
		result.Action = "mouse_up"
		err = inputter.MouseUp(ctx, w, opts.X, opts.Y, opts.Button)
	default:
		result.Action = "click"
		err = inputter.Click(ctx, w, opts.X, opts.Y, opts.Button)
	}
	if err != nil {
		return result, fmt.Errorf("%s failed: %w", result.Action, err)
	}
	result.OK = true
	return result, nil
}
