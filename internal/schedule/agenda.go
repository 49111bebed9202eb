package schedule

import (
	"fmt"
	"time"
)

// Item is an activity as shown in the checklist.
type Item struct {
	Key           string   `json:"key" yaml:"key"`
	Activity      Activity `json:"activity" yaml:"activity"`
	IsToday       bool     `json:"isToday" yaml:"isToday"`
	IsUnscheduled bool     `json:"isUnscheduled" yaml:"isUnscheduled"`
}

// Day is one date section of the checklist.
type Day struct {
	Key     string    `json:"date" yaml:"date"`
	Date    time.Time `json:"-" yaml:"-"`
	IsToday bool      `json:"isToday" yaml:"isToday"`
	Items   []Item    `json:"items" yaml:"items"`
}

// Agenda is the display-ordered projection of a schedule.
type Agenda struct {
	Days []Day `json:"days" yaml:"days"`
}

// AgendaOptions tweaks BuildAgenda.
type AgendaOptions struct {
	// IncludePast keeps days before today instead of filtering them out.
	IncludePast bool
}

// ItemKey is the identity used to correlate checkbox state with an item.
func ItemKey(date string, index int) string {
	return fmt.Sprintf("%s_%d", date, index)
}

// BuildAgenda orders the schedule's days for display and attaches the
// unscheduled activities to today. If today has nothing scheduled but there
// are unscheduled activities, a today section is added so they stay visible.
func BuildAgenda(sched *Schedule, unscheduled []Activity, now time.Time, opts AgendaOptions) Agenda {
	var keys []string
	if opts.IncludePast {
		keys = SortKeys(sched.Keys(), now.Location())
	} else {
		keys = UpcomingKeys(sched.Keys(), now)
	}

	todayIdx := -1
	for i, key := range keys {
		if IsToday(key, now) {
			todayIdx = i
			break
		}
	}
	if todayIdx < 0 && len(unscheduled) > 0 {
		keys, todayIdx = insertToday(keys, now)
	}

	var agenda Agenda
	for i, key := range keys {
		res := ParseDateKey(key, now.Location())
		day := Day{Key: key, Date: res.Date, IsToday: i == todayIdx}

		var activities []Activity
		pending := 0
		if day.IsToday {
			activities = append(activities, unscheduled...)
			pending = len(unscheduled)
		}
		activities = append(activities, sched.Day(key)...)

		for j, a := range activities {
			day.Items = append(day.Items, Item{
				Key:           ItemKey(key, j),
				Activity:      a,
				IsToday:       day.IsToday,
				IsUnscheduled: j < pending,
			})
		}
		agenda.Days = append(agenda.Days, day)
	}

	return agenda
}

// insertToday places today's key at its chronological position.
func insertToday(keys []string, now time.Time) ([]string, int) {
	today := StartOfDay(now)
	pos := len(keys)
	for i, key := range keys {
		if res := ParseDateKey(key, now.Location()); res.OK && res.Date.After(today) {
			pos = i
			break
		}
	}

	out := make([]string, 0, len(keys)+1)
	out = append(out, keys[:pos]...)
	out = append(out, FormatKey(today))
	out = append(out, keys[pos:]...)
	return out, pos
}

// Len is the total number of items across all days.
func (a Agenda) Len() int {
	n := 0
	for _, d := range a.Days {
		n += len(d.Items)
	}
	return n
}

// Today returns today's section, if any.
func (a Agenda) Today() (Day, bool) {
	for _, d := range a.Days {
		if d.IsToday {
			return d, true
		}
	}
	return Day{}, false
}
