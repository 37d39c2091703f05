package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/xavierca1/frontdesk/internal/entity"
)

// GridConfig describes the visible part of a calendar day in minutes.
type GridConfig struct {
	Open  int
	Close int
	Step  int
}

func DefaultGrid() GridConfig {
	return GridConfig{Open: 8 * 60, Close: 20 * 60, Step: 30}
}

// Slots returns the start minute of every cell between Open and Close.
func (g GridConfig) Slots() []int {
	if g.Step <= 0 || g.Close <= g.Open {
		return nil
	}
	slots := make([]int, 0, (g.Close-g.Open)/g.Step)
	for m := g.Open; m < g.Close; m += g.Step {
		slots = append(slots, m)
	}
	return slots
}

type GridEntry struct {
	Booking *entity.Booking `json:"booking"`
	Start   bool            `json:"start"`
	Span    int             `json:"span"`
}

type GridCell struct {
	Time     string      `json:"time"`
	Entries  []GridEntry `json:"entries"`
	Conflict bool        `json:"conflict"`
}

type DayGrid struct {
	Date    string            `json:"date"`
	Weekday string            `json:"weekday"`
	Cells   []GridCell        `json:"cells"`
	Outside []*entity.Booking `json:"outside,omitempty"`
}

type WeekGrid struct {
	Start string    `json:"start"`
	End   string    `json:"end"`
	Days  []DayGrid `json:"days"`
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Poniedziałek",
	time.Tuesday:   "Wtorek",
	time.Wednesday: "Środa",
	time.Thursday:  "Czwartek",
	time.Friday:    "Piątek",
	time.Saturday:  "Sobota",
	time.Sunday:    "Niedziela",
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(entity.DateLayout, strings.TrimSpace(s))
}

// BuildDay lays the bookings of one date onto the grid. A booking covers
// every cell its [from, to) range intersects. The first covered cell carries
// Start and the number of covered cells; cells holding bookings whose ranges
// overlap are marked Conflict. Bookings of other dates are ignored, and bookings that
// fall entirely outside opening hours are returned in Outside.
func BuildDay(date string, bookings []*entity.Booking, g GridConfig) DayGrid {
	day := DayGrid{Date: date}
	if t, err := parseDate(date); err == nil {
		day.Weekday = weekdayNames[t.Weekday()]
	}

	slots := g.Slots()
	day.Cells = make([]GridCell, len(slots))
	for i, s := range slots {
		day.Cells[i] = GridCell{Time: entity.FormatClock(s), Entries: []GridEntry{}}
	}

	ordered := make([]*entity.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Date == date {
			ordered = append(ordered, b)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].TimeFrom != ordered[j].TimeFrom {
			return ordered[i].TimeFrom < ordered[j].TimeFrom
		}
		return ordered[i].TimeTo < ordered[j].TimeTo
	})

	for _, b := range ordered {
		from, to, ok := b.Range()
		if !ok {
			continue
		}
		first, span := -1, 0
		for i, s := range slots {
			if from < s+g.Step && s < to {
				if first < 0 {
					first = i
				}
				span++
			}
		}
		if first < 0 {
			day.Outside = append(day.Outside, b)
			continue
		}
		for i := first; i < first+span; i++ {
			day.Cells[i].Entries = append(day.Cells[i].Entries, GridEntry{
				Booking: b,
				Start:   i == first,
				Span:    span,
			})
		}
	}

	for i := range day.Cells {
		day.Cells[i].Conflict = hasOverlap(day.Cells[i].Entries)
	}
	return day
}

// hasOverlap reports whether two bookings in a cell share a minute. Back to
// back visits that only meet at a boundary share the cell without clashing.
func hasOverlap(entries []GridEntry) bool {
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].Booking.Overlaps(entries[j].Booking) {
				return true
			}
		}
	}
	return false
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// WeekRange returns the Monday and Sunday dates around date.
func WeekRange(date string) (string, string, error) {
	t, err := parseDate(date)
	if err != nil {
		return "", "", err
	}
	start := WeekStart(t)
	return start.Format(entity.DateLayout), start.AddDate(0, 0, 6).Format(entity.DateLayout), nil
}

// BuildWeek builds the Monday-to-Sunday grid around anyDate.
func BuildWeek(anyDate string, bookings []*entity.Booking, g GridConfig) (WeekGrid, error) {
	t, err := parseDate(anyDate)
	if err != nil {
		return WeekGrid{}, err
	}
	start := WeekStart(t)
	week := WeekGrid{
		Start: start.Format(entity.DateLayout),
		End:   start.AddDate(0, 0, 6).Format(entity.DateLayout),
		Days:  make([]DayGrid, 0, 7),
	}
	for i := 0; i < 7; i++ {
		week.Days = append(week.Days, BuildDay(start.AddDate(0, 0, i).Format(entity.DateLayout), bookings, g))
	}
	return week, nil
}
