// Package attendance records recognized faces in an append-only CSV log.
package attendance

import (
	"fmt"
	"sync"
	"time"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/constants"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/csvtable"
)

var columns = []string{"name", "date", "time"}

// Record is one attendance row. Date and Time are kept in their stored form.
type Record struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// Log appends attendance records to a CSV file.
type Log struct {
	table *csvtable.Table
	mu    sync.Mutex
	now   func() time.Time
}

// NewLog returns a log stored at path. The file is created on first append.
func NewLog(path string) *Log {
	return &Log{
		table: csvtable.New(path, columns...),
		now:   time.Now,
	}
}

// Path returns the CSV file backing the log.
func (l *Log) Path() string {
	return l.table.Path()
}

// Append records name as present at the current local date and time.
// Repeated calls for the same name add repeated rows.
func (l *Log) Append(name string) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec := Record{
		Name: name,
		Date: now.Format(constants.DateLayout),
		Time: now.Format(constants.TimeLayout),
	}
	if err := l.table.Append(rec.Name, rec.Date, rec.Time); err != nil {
		return Record{}, fmt.Errorf("recording attendance for %s: %w", name, err)
	}
	return rec, nil
}

// Records returns the logged rows in file order. A non-empty date
// (YYYY-MM-DD) keeps only that day's rows.
func (l *Log) Records(date string) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.table.Ensure(); err != nil {
		return nil, err
	}
	rows, err := l.table.ReadAll()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		if date != "" && row[1] != date {
			continue
		}
		records = append(records, Record{Name: row[0], Date: row[1], Time: row[2]})
	}
	return records, nil
}
