package schedule

import (
	"fmt"
	"io"
	"strings"
)

// Column positions in the published sheet.
const (
	colDate = iota
	colDay
	colTime
	colEmoji
	colActivity
	colTipo
	colDistanza
	colRitmo
	colNote

	minColumns     = colActivity + 1
	runningColumns = colNote + 1
)

// Build parses the full CSV text of the sheet. The first line is the header
// and is always discarded. Rows with too few columns or no activity text are
// skipped silently, since half-edited rows are normal while the sheet is
// being worked on.
//
// A row with a date but no time ends up unscheduled, the same as a row with
// no date at all.
func Build(text string) (*Schedule, []Activity) {
	sched := NewSchedule()
	var unscheduled []Activity

	lines := strings.Split(text, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		r, ok := parseRow(SplitLine(line))
		if !ok {
			continue
		}

		if !r.hasDate() || !r.hasTime {
			unscheduled = append(unscheduled, r.activity)
			continue
		}
		sched.Add(r.date, r.activity)
	}

	return sched, unscheduled
}

// BuildReader reads r to the end and parses it with Build.
func BuildReader(r io.Reader) (*Schedule, []Activity, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read schedule: %w", err)
	}
	sched, unscheduled := Build(string(data))
	return sched, unscheduled, nil
}

type row struct {
	date     string
	hasTime  bool
	activity Activity
}

func (r row) hasDate() bool {
	return r.date != ""
}

// parseRow turns tokenized fields into an activity and its date key.
func parseRow(fields []string) (row, bool) {
	if len(fields) < minColumns {
		return row{}, false
	}

	date := strings.TrimSpace(fields[colDate])
	timeStr := strings.TrimSpace(fields[colTime])
	emoji := strings.TrimSpace(fields[colEmoji])
	text := strings.TrimSpace(fields[colActivity])
	if text == "" {
		return row{}, false
	}

	r := row{date: date, hasTime: timeStr != ""}
	if !r.hasTime {
		timeStr = NoTime
	}

	a := Activity{
		Time:     timeStr,
		Emoji:    emoji,
		Activity: text,
	}

	if len(fields) >= runningColumns && strings.TrimSpace(fields[colTipo]) != "" {
		a.Running = &RunningDetails{
			Tipo:     strings.TrimSpace(fields[colTipo]),
			Distanza: strings.TrimSpace(fields[colDistanza]),
			Ritmo:    strings.TrimSpace(fields[colRitmo]),
			Note:     strings.TrimSpace(fields[colNote]),
		}
	}

	r.activity = a
	return r, true
}
