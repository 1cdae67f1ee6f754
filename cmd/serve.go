package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/attendance"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/config"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the attendance web server.
The gallery cache is built from the registered users table before the server
starts accepting requests. Photos uploaded on / are matched against it and
recognized people are appended to the attendance log.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
	serveCmd.Flags().Float64("threshold", 0, "Maximum match distance (overrides MATCH_THRESHOLD)")
}

// applyServeFlags lets explicitly set flags win over the loaded configuration.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = mustGetInt(cmd, "port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = mustGetString(cmd, "host")
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Matching.Threshold = mustGetFloat64(cmd, "threshold")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	recognizer := newRecognizer(cfg)
	store, err := newStore(cfg, recognizer)
	if err != nil {
		return err
	}

	fmt.Printf("Loading registered faces from %s...\n", cfg.Storage.RegisteredUsersCSV)
	report, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading gallery: %w", err)
	}
	fmt.Printf("Gallery ready with %d of %d registered faces\n", report.Loaded, report.Total)
	printSkipped(report)

	attendanceLog := attendance.NewLog(cfg.Storage.AttendanceCSV)
	server := web.NewServer(cfg, store, recognizer, attendanceLog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting attendance web UI on http://%s\n", cfg.Server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
