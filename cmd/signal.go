package cmd

import (
	"github.com/mj1618/focusguard/internal/output"
	"github.com/mj1618/focusguard/internal/signal"
	"github.com/spf13/cobra"
)

// SignalResult is the output of the signal command.
type SignalResult struct {
	OK      bool   `yaml:"ok"      json:"ok"`
	Action  string `yaml:"action"  json:"action"`
	Marker  string `yaml:"marker"  json:"marker"`
	Payload string `yaml:"payload" json:"payload"`
	Close   bool   `yaml:"close"   json:"close"`
}

var signalCmd = &cobra.Command{
	Use:   "signal [reason]",
	Short: "Announce a window switch to a running focusguard",
	Long: `Write the switch marker file. The next event a running focusguard processes
consumes it and stops arbitrating until a new window takes focus. With --close
the switch is marked as caused by a window closing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSignal,
}

func init() {
	rootCmd.AddCommand(signalCmd)
	signalCmd.Flags().Bool("close", false, "The switch happens because a window closes")
	signalCmd.Flags().String("marker", "", "Switch marker file (default from config)")
}

func runSignal(cmd *cobra.Command, args []string) error {
	isClose, _ := cmd.Flags().GetBool("close")
	marker, _ := cmd.Flags().GetString("marker")
	if marker == "" {
		marker = cfg.Marker.Path
	}
	reason := "switch"
	if len(args) > 0 {
		reason = args[0]
	}

	if err := signal.WriteMarker(marker, reason, isClose, cfg.Marker.CloseTag); err != nil {
		return err
	}
	return output.Print(SignalResult{
		OK:      true,
		Action:  "signal",
		Marker:  marker,
		Payload: signal.Format(reason, isClose, cfg.Marker.CloseTag),
		Close:   isClose,
	})
}
