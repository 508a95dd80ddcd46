package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/zap"
	"github.com/mj1618/focusguard/internal/config"
	"github.com/mj1618/focusguard/internal/output"
	"github.com/mj1618/focusguard/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "focusguard",
	Short: "Keep keyboard focus on a browser window while popups come and go",
	Long: `focusguard sits between an X11 client and its event queue. It suppresses
the focus changes a window manager generates while popups are built or torn
down, and gives focus back when a popup's child steals it.`,
	SilenceUsage: true,
}

var (
	// Access these variables only from command handlers:

	cfg         = config.Default()
	loggerLevel = logger.LevelWarning
	runCtx      = context.Background()
)

func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	belt.Flush(runCtx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", config.DefaultPath(), "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("display", "", "X display to connect to (default: $DISPLAY or the config file)")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().Var(&loggerLevel, "log-level", "Log level: trace, debug, info, warning, error, fatal, panic")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := rootCmd.PersistentFlags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded

		if display, _ := rootCmd.PersistentFlags().GetString("display"); display != "" {
			cfg.Display = display
		}
		if !rootCmd.PersistentFlags().Changed("log-level") {
			if loggerLevel, err = cfg.LoggerLevel(loggerLevel); err != nil {
				return err
			}
		}

		format, _ := rootCmd.PersistentFlags().GetString("format")
		if output.OutputFormat, err = output.ParseFormat(format); err != nil {
			return err
		}
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		l := zap.Default().WithLevel(loggerLevel)
		ctx := logger.CtxWithLogger(cmd.Context(), l)
		logger.Default = func() logger.Logger {
			return l
		}
		cmd.SetContext(ctx)
		runCtx = ctx
		logger.Debugf(ctx, "log-level: %v, config: %q", loggerLevel, path)
		return nil
	}
}
