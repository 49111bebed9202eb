package schedule

import (
	"reflect"
	"strings"
	"testing"
)

const header = "Data,Giorno,Ora,Emoji,Attività,Tipo,Distanza,Ritmo,Note\n"

func TestBuildRunningDetails(t *testing.T) {
	sched, unscheduled := Build(header + "01/06/2025,Sunday,08:00,🏃,Run,Easy,5km,5:30,feel good\n")

	if len(unscheduled) != 0 {
		t.Fatalf("Expected no unscheduled activities, got %d", len(unscheduled))
	}

	day := sched.Day("01/06/2025")
	if len(day) != 1 {
		t.Fatalf("Expected 1 activity on 01/06/2025, got %d", len(day))
	}

	want := Activity{
		Time:     "08:00",
		Emoji:    "🏃",
		Activity: "Run",
		Running: &RunningDetails{
			Tipo:     "Easy",
			Distanza: "5km",
			Ritmo:    "5:30",
			Note:     "feel good",
		},
	}
	if !reflect.DeepEqual(day[0], want) {
		t.Errorf("Activity mismatch: got %+v, want %+v", day[0], want)
	}
}

func TestBuildUnscheduledDefaults(t *testing.T) {
	sched, unscheduled := Build(header + ",,,,Buy milk\n")

	if sched.Len() != 0 {
		t.Errorf("Expected empty schedule, got %d days", sched.Len())
	}
	want := []Activity{{Time: NoTime, Emoji: "", Activity: "Buy milk"}}
	if !reflect.DeepEqual(unscheduled, want) {
		t.Errorf("Unscheduled mismatch: got %+v, want %+v", unscheduled, want)
	}
}

func TestBuildSkipsShortRows(t *testing.T) {
	rows := []string{
		"01/06/2025,Sunday,08:00,🏃",
		"01/06/2025",
		"a,b,c",
		"",
		"   ",
	}
	sched, unscheduled := Build(header + strings.Join(rows, "\n"))

	if sched.Len() != 0 || len(unscheduled) != 0 {
		t.Errorf("Short rows produced activities: %d days, %d unscheduled", sched.Len(), len(unscheduled))
	}
}

func TestBuildSkipsEmptyActivity(t *testing.T) {
	sched, unscheduled := Build(header + "01/06/2025,Sunday,08:00,🏃,   \n")
	if sched.Len() != 0 || len(unscheduled) != 0 {
		t.Errorf("Row with blank activity was kept")
	}
}

func TestBuildClassification(t *testing.T) {
	tests := []struct {
		name        string
		row         string
		scheduled   bool
		expectedKey string
	}{
		{name: "date and time", row: "02/06/2025,Monday,07:30,,Swim", scheduled: true, expectedKey: "02/06/2025"},
		{name: "date without time", row: "02/06/2025,Monday,,,Stretch", scheduled: false},
		{name: "time without date", row: ",,18:00,,Call mum", scheduled: false},
		{name: "neither", row: ",,,,Laundry", scheduled: false},
		{name: "whitespace only time", row: "02/06/2025,Monday,  ,,Read", scheduled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched, unscheduled := Build(header + tt.row)
			if tt.scheduled {
				if len(unscheduled) != 0 {
					t.Errorf("Scheduled row also landed in unscheduled list")
				}
				if len(sched.Day(tt.expectedKey)) != 1 {
					t.Errorf("Expected one activity under %s, keys = %v", tt.expectedKey, sched.Keys())
				}
				return
			}
			if sched.Len() != 0 {
				t.Errorf("Unscheduled row landed in schedule under %v", sched.Keys())
			}
			if len(unscheduled) != 1 {
				t.Errorf("Expected one unscheduled activity, got %d", len(unscheduled))
			}
		})
	}
}

func TestBuildRunningDetailsGate(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		running bool
	}{
		{name: "exactly five fields", row: "01/06/2025,Sunday,08:00,🏃,Run", running: false},
		{name: "eight fields", row: "01/06/2025,Sunday,08:00,🏃,Run,Easy,5km,5:30", running: false},
		{name: "empty tipo", row: "01/06/2025,Sunday,08:00,🏃,Run, ,5km,5:30,ok", running: false},
		{name: "all nine", row: "01/06/2025,Sunday,08:00,🏃,Run,Easy,5km,5:30,ok", running: true},
		{name: "tipo only", row: "01/06/2025,Sunday,08:00,🏃,Run,Rest,,,", running: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched, _ := Build(header + tt.row)
			day := sched.Day("01/06/2025")
			if len(day) != 1 {
				t.Fatalf("Expected one activity, got %d", len(day))
			}
			if got := day[0].Running != nil; got != tt.running {
				t.Errorf("Running details present = %v, want %v", got, tt.running)
			}
		})
	}
}

func TestBuildKeepsRowOrderAndHeader(t *testing.T) {
	text := "01/06/2025,Sunday,08:00,,Header looking row\n" +
		"01/06/2025,Sunday,09:00,,First\n" +
		"03/06/2025,Tuesday,10:00,,Other day\n" +
		"01/06/2025,Sunday,07:00,,Second\n"

	sched, _ := Build(text)

	var got []string
	for _, a := range sched.Day("01/06/2025") {
		got = append(got, a.Activity)
	}
	want := []string{"First", "Second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Row order: got %v, want %v", got, want)
	}

	if keys := sched.Keys(); !reflect.DeepEqual(keys, []string{"01/06/2025", "03/06/2025"}) {
		t.Errorf("Keys: got %v", keys)
	}
}

func TestBuildQuotedActivity(t *testing.T) {
	sched, _ := Build(header + `01/06/2025,Sunday,08:00,🍳,"Eggs, toast and coffee"` + "\r\n")
	day := sched.Day("01/06/2025")
	if len(day) != 1 || day[0].Activity != "Eggs, toast and coffee" {
		t.Errorf("Quoted activity not kept intact: %+v", day)
	}
}

func TestBuildReader(t *testing.T) {
	sched, unscheduled, err := BuildReader(strings.NewReader(header + "01/06/2025,Sunday,08:00,,Run\n,,,,Stretch\n"))
	if err != nil {
		t.Fatalf("BuildReader failed: %v", err)
	}
	if sched.Len() != 1 || len(unscheduled) != 1 {
		t.Errorf("Got %d days and %d unscheduled", sched.Len(), len(unscheduled))
	}
}

func TestBuildEmptyInput(t *testing.T) {
	for _, text := range []string{"", header, "\n\n"} {
		sched, unscheduled := Build(text)
		if sched.Len() != 0 || len(unscheduled) != 0 {
			t.Errorf("Build(%q) produced activities", text)
		}
	}
}
