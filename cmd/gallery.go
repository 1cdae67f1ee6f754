package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/gallery"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Inspect the registered faces",
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered people",
	Long:  `List every row of the registered users table. No face service calls are made.`,
	RunE:  runGalleryList,
}

var galleryRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Compute embeddings for every registered photo",
	Long: `Compute a face embedding for every registered photo, exactly as the server
does at startup, and report the photos that cannot be used for matching.`,
	RunE: runGalleryRebuild,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.AddCommand(galleryListCmd)
	galleryCmd.AddCommand(galleryRebuildCmd)
}

func runGalleryList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := newStore(cfg, nil)
	if err != nil {
		return err
	}

	ids, err := store.Identities()
	if err != nil {
		return fmt.Errorf("reading registered users: %w", err)
	}
	if len(ids) == 0 {
		fmt.Println("No registered users.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tROLL NUMBER\tPHOTO")
	fmt.Fprintln(w, "----\t-----------\t-----")
	for _, id := range ids {
		fmt.Fprintf(w, "%s\t%s\t%s\n", id.Name, id.RollNumber, id.ImagePath)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d registered users\n", len(ids))
	return nil
}

func runGalleryRebuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := newStore(cfg, newRecognizer(cfg))
	if err != nil {
		return err
	}

	ids, err := store.Identities()
	if err != nil {
		return fmt.Errorf("reading registered users: %w", err)
	}

	bar := progressbar.NewOptions(len(ids),
		progressbar.OptionSetDescription("Encoding faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	report, err := store.LoadWithProgress(cmd.Context(), func(gallery.Identity, error) {
		bar.Add(1)
	})
	bar.Finish()
	if err != nil {
		return fmt.Errorf("rebuilding gallery: %w", err)
	}

	fmt.Printf("\nEncoded %d of %d registered photos\n", report.Loaded, report.Total)
	if len(report.Skipped) > 0 {
		fmt.Printf("%d photos cannot be matched:\n", len(report.Skipped))
		printSkipped(report)
	}
	return nil
}
