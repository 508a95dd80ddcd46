package cmd

import (
	"fmt"
	"time"

	"github.com/mj1618/focusguard/internal/model"
	"github.com/mj1618/focusguard/internal/output"
	"github.com/spf13/cobra"
)

// TypeResult is the output of a successful type command.
type TypeResult struct {
	OK     bool           `yaml:"ok"     json:"ok"`
	Action string         `yaml:"action" json:"action"`
	Window model.WindowID `yaml:"window" json:"window"`
	Text   string         `yaml:"text"   json:"text"`
}

var typeCmd = &cobra.Command{
	Use:   "type [text]",
	Short: "Type text into a window",
	Long:  "Give a window the keyboard focus and type text into it. Text can be passed as a positional argument or via --text.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runType,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	typeCmd.Flags().String("text", "", "Text to type (alternative to positional arg)")
	typeCmd.Flags().Int("delay", 0, "Delay between keystrokes in ms")
	typeCmd.Flags().String("window", windowActive, "Window id, or \"active\"")
}

func runType(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	delayMs, _ := cmd.Flags().GetInt("delay")
	window, _ := cmd.Flags().GetString("window")

	// Positional arg overrides --text flag
	if len(args) > 0 {
		text = args[0]
	}
	if text == "" {
		return fmt.Errorf("specify --text or a positional text argument")
	}
	if delayMs < 0 {
		return fmt.Errorf("--delay must not be negative")
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

	if err := provider.Inputter.SendKeys(ctx, w, text, time.Duration(delayMs)*time.Millisecond); err != nil {
		return fmt.Errorf("failed to type text: %w", err)
	}
	return output.Print(TypeResult{OK: true, Action: "type", Window: w, Text: text})
}
