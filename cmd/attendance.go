package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/attendance"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/constants"
	"github.com/spf13/cobra"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Inspect the attendance log",
}

var attendanceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attendance records",
	Long: `List attendance records in the order they were recorded.

Examples:
  face-attendance attendance list
  face-attendance attendance list --today
  face-attendance attendance list --date 2024-03-07`,
	RunE: runAttendanceList,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
	attendanceCmd.AddCommand(attendanceListCmd)

	attendanceListCmd.Flags().String("date", "", "Only show records of this day (YYYY-MM-DD)")
	attendanceListCmd.Flags().Bool("today", false, "Only show today's records")
}

func runAttendanceList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	date := mustGetString(cmd, "date")
	if mustGetBool(cmd, "today") {
		date = time.Now().Format(constants.DateLayout)
	}
	if date != "" {
		if _, err := time.Parse(constants.DateLayout, date); err != nil {
			return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", date)
		}
	}

	records, err := attendance.NewLog(cfg.Storage.AttendanceCSV).Records(date)
	if err != nil {
		return fmt.Errorf("reading attendance: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No attendance records found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTIME\tNAME")
	fmt.Fprintln(w, "----\t----\t----")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Date, r.Time, r.Name)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d records\n", len(records))
	return nil
}
