package cmd

import (
	"fmt"
	"os"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "face-attendance",
	Short: "Mark attendance by recognizing faces in photos",
	Long: `Face Attendance registers people by photo and marks attendance by matching
uploaded photos against the registered faces.

Face detection and embeddings are computed by an external face embedding
service (FACE_SERVICE_URL). Registered people and attendance records are
kept in CSV files.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $ATTENDANCE_CONFIG)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	if configPath == "" {
		configPath = os.Getenv("ATTENDANCE_CONFIG")
	}
}

// loadConfig reads the configuration selected by --config and the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
