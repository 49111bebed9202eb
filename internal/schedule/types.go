package schedule

// NoTime is shown in place of a missing time.
const NoTime = "—"

// RunningDetails holds the optional training columns of a row.
type RunningDetails struct {
	Tipo     string `json:"tipo" yaml:"tipo"`
	Distanza string `json:"distanza" yaml:"distanza"`
	Ritmo    string `json:"ritmo" yaml:"ritmo"`
	Note     string `json:"note" yaml:"note"`
}

// Activity is one checklist line parsed from the sheet.
type Activity struct {
	Time     string          `json:"time" yaml:"time"`
	Emoji    string          `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Activity string          `json:"activity" yaml:"activity"`
	Running  *RunningDetails `json:"runningDetails,omitempty" yaml:"runningDetails,omitempty"`
}

// Schedule groups timed activities by their date key (dd/mm/yyyy as written
// in the sheet). Keys keeps first-seen order so iteration is deterministic.
type Schedule struct {
	days map[string][]Activity
	keys []string
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{days: make(map[string][]Activity)}
}

// Add appends an activity under date, creating the day if needed.
func (s *Schedule) Add(date string, a Activity) {
	if _, ok := s.days[date]; !ok {
		s.keys = append(s.keys, date)
	}
	s.days[date] = append(s.days[date], a)
}

// Day returns the activities for date in sheet order.
func (s *Schedule) Day(date string) []Activity {
	if s == nil {
		return nil
	}
	return s.days[date]
}

// Keys returns the date keys in the order they first appeared.
func (s *Schedule) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Len is the number of distinct dates.
func (s *Schedule) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}
