package aggregation

import (
	"time"

	"github.com/frahmantamala/missiontime/pkg/dateutil"
)

// Window is an inclusive range of calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

func NewWindow(start, end time.Time) Window {
	return Window{Start: dateutil.Truncate(start), End: dateutil.Truncate(end)}
}

// MonthWindow spans the whole calendar month.
func MonthWindow(year int, month time.Month) Window {
	return Window{Start: dateutil.MonthStart(year, month), End: dateutil.MonthEnd(year, month)}
}

func (w Window) Contains(d time.Time) bool {
	d = dateutil.Truncate(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) Empty() bool {
	return w.End.Before(w.Start)
}

// Days is the number of calendar days in the window.
func (w Window) Days() int {
	if w.Empty() {
		return 0
	}
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func (w Window) bounds() (string, string) {
	return dateutil.Format(w.Start), dateutil.Format(w.End)
}

// Clip intersects the segment [start, end] with w. A nil end means the segment is
// still open. The second result is false when they do not overlap.
func Clip(start time.Time, end *time.Time, w Window) (Window, bool) {
	clipped := Window{Start: dateutil.Truncate(start), End: w.End}
	if clipped.Start.Before(w.Start) {
		clipped.Start = w.Start
	}
	if end != nil {
		e := dateutil.Truncate(*end)
		if e.Before(clipped.End) {
			clipped.End = e
		}
	}
	if clipped.Empty() {
		return Window{}, false
	}
	return clipped, true
}
