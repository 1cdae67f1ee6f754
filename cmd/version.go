package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build metadata, set by -ldflags at compile time.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// vcsRevision falls back to the revision stamped by the go tool when no
// -ldflags were given.
func vcsRevision() string {
	if CommitSHA != "unknown" {
		return CommitSHA
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return CommitSHA
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return CommitSHA
}

func runVersion(cmd *cobra.Command, args []string) error {
	fmt.Printf("face-attendance %s\n", Version)
	fmt.Printf("  Commit: %s\n", vcsRevision())
	fmt.Printf("  Built:  %s\n", BuildDate)
	fmt.Printf("  Go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Printf("  Face service: %s (%s, threshold %.2f)\n", cfg.FaceService.URL, cfg.Matching.Metric, cfg.Matching.Threshold)
	return nil
}
