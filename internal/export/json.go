package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/deepwork/internal/focus"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	TodayTotal int        `json:"today_total_seconds"`
	WeekTotal  int        `json:"week_total_seconds"`
	Today      []jsonTask `json:"today"`
	Week       []jsonDay  `json:"week"`
}

type jsonTask struct {
	Task     string `json:"task"`
	Seconds  int    `json:"seconds"`
	Duration string `json:"duration"`
}

type jsonDay struct {
	Date     string `json:"date"`
	Weekday  string `json:"weekday"`
	Seconds  int    `json:"seconds"`
	Duration string `json:"duration"`
}

func ToJSON(snap focus.Snapshot, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Today:      []jsonTask{},
		Week:       []jsonDay{},
	}

	for _, e := range snap.Today {
		export.TodayTotal += e.Seconds
		export.Today = append(export.Today, jsonTask{
			Task:     e.Task,
			Seconds:  e.Seconds,
			Duration: formatDuration(e.Seconds),
		})
	}
	for _, e := range snap.Week {
		export.WeekTotal += e.TotalSeconds
		export.Week = append(export.Week, jsonDay{
			Date:     e.DateID,
			Weekday:  e.WeekdayLabel,
			Seconds:  e.TotalSeconds,
			Duration: formatDuration(e.TotalSeconds),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
