package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <name> <roll-number> <photo>",
	Short: "Register a person from a photo",
	Long: `Register a person without going through the web UI.
The photo is stored in the known faces directory as JPEG, the person is
appended to the registered users table and the gallery is rebuilt to check
that a face can be found in the photo.

Example:
  face-attendance register "Jane Doe" CS-042 ./jane.jpg`,
	Args: cobra.ExactArgs(3),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[2])
	if err != nil {
		return fmt.Errorf("reading photo: %w", err)
	}

	store, err := newStore(cfg, newRecognizer(cfg))
	if err != nil {
		return err
	}

	id, report, err := store.Register(cmd.Context(), args[0], args[1], data)
	if err != nil {
		return fmt.Errorf("registering %s: %w", args[0], err)
	}

	fmt.Printf("Registered %s\n", id.DisplayName())
	fmt.Printf("  Photo: %s\n", id.ImagePath)
	for _, skip := range report.Skipped {
		if skip.Identity == id {
			fmt.Printf("Warning: %s will not be recognized: %v\n", id.DisplayName(), skip.Reason)
		}
	}
	fmt.Printf("Gallery has %d matchable faces\n", report.Loaded)
	return nil
}
