package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/deepwork/internal/focus"
)

// ToCSV writes both analytics views as one table; the Section column tells
// today rows (keyed by task) from week rows (keyed by date).
func ToCSV(snap focus.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Section", "Key", "Weekday", "Seconds", "Duration"}); err != nil {
		return err
	}

	for _, e := range snap.Today {
		row := []string{"today", e.Task, "", strconv.Itoa(e.Seconds), formatDuration(e.Seconds)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	for _, e := range snap.Week {
		row := []string{"week", e.DateID, e.WeekdayLabel, strconv.Itoa(e.TotalSeconds), formatDuration(e.TotalSeconds)}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
