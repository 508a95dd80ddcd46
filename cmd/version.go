package cmd

import (
	"runtime"

	"github.com/mj1618/focusguard/internal/output"
	"github.com/mj1618/focusguard/internal/version"
	"github.com/spf13/cobra"
)

// VersionResult is the output of the version command.
type VersionResult struct {
	Version   string `yaml:"version"    json:"version"`
	Commit    string `yaml:"commit"     json:"commit"`
	BuildDate string `yaml:"build_date" json:"build_date"`
	Platform  string `yaml:"platform"   json:"platform"`
	Library   string `yaml:"library"    json:"library"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information and the windowing library in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Print(VersionResult{
			Version:   version.Version,
			Commit:    version.Commit,
			BuildDate: version.BuildDate,
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			Library:   cfg.LibraryPolicy().Path(),
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
