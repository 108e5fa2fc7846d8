package focus

import "fmt"

// FormatMinutesSeconds renders a second count as MM:SS.
func FormatMinutesSeconds(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}

// WholeMinutes floors a second count to minutes.
func WholeMinutes(seconds int) int {
	if seconds < 0 {
		return 0
	}
	return seconds / 60
}

// FormatMinutes renders a second count as "N min".
func FormatMinutes(seconds int) string {
	return fmt.Sprintf("%d min", WholeMinutes(seconds))
}
