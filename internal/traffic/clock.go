package traffic

import "time"

// Display is the time-of-day label state next to the slider
type Display struct {
	AnyTime bool   `json:"any_time"`
	Label   string `json:"label,omitempty"`
}

// FormatTime renders a minute-of-day as a short en-US time, e.g. "8:00 AM"
func FormatTime(minutes int) string {
	t := time.Date(0, time.January, 1, 0, minutes, 0, 0, time.UTC)
	return t.Format("3:04 PM")
}

// DisplayFor returns the label state for a slider value
func DisplayFor(minute int) Display {
	if minute == NoFilter {
		return Display{AnyTime: true}
	}
	return Display{Label: FormatTime(minute)}
}
