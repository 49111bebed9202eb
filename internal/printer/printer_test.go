package printer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/cwarden/agenda/internal/schedule"
)

func sampleAgenda(t *testing.T) schedule.Agenda {
	t.Helper()
	sched, unscheduled := schedule.Build(strings.Join([]string{
		"Data,Giorno,Orario,Emoji,Attività,Tipo,Distanza,Ritmo,Note",
		"01/06/2026,Lunedì,07:30,🏃,Corsa,Fondo,10km,5:30,tranquillo",
		"02/06/2026,Martedì,18:00,🏊,Nuoto",
		",,,,Comprare latte",
	}, "\n"))
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	return schedule.BuildAgenda(sched, unscheduled, now, schedule.AgendaOptions{})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatPretty},
		{in: "pretty", want: FormatPretty},
		{in: "JSON", want: FormatJSON},
		{in: " yaml ", want: FormatYAML},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Wrong format: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPrettyPrint(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	p := &Printer{Format: FormatPretty, DateFormat: "Monday 2 January", Out: &buf}
	if err := p.Print(sampleAgenda(t)); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Monday 1 June (today)",
		"Tuesday 2 June",
		"Comprare latte",
		"07:30",
		"Fondo · 10km · 5:30 · tranquillo",
		"Nuoto",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}

	if strings.Index(out, "Comprare latte") > strings.Index(out, "Corsa") {
		t.Errorf("Unscheduled items should come first under today:\n%s", out)
	}
}

func TestPrettyPrintEmpty(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	p := &Printer{Out: &buf}
	if err := p.Print(schedule.Agenda{}); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if !strings.Contains(buf.String(), "nothing scheduled") {
		t.Errorf("Wrong empty output: %q", buf.String())
	}
}

func TestJSONPrint(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Format: FormatJSON, Out: &buf}
	if err := p.Print(sampleAgenda(t)); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	var got schedule.Agenda
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, buf.String())
	}
	if len(got.Days) != 2 {
		t.Fatalf("Wrong day count: %d", len(got.Days))
	}
	first := got.Days[0].Items
	if len(first) != 2 || !first[0].IsUnscheduled || first[0].Key != "01/06/2026_0" {
		t.Errorf("Wrong today items: %+v", first)
	}
	if first[1].Activity.Running == nil || first[1].Activity.Running.Distanza != "10km" {
		t.Errorf("Running details lost: %+v", first[1].Activity)
	}
}

func TestYAMLPrint(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Format: FormatYAML, Out: &buf}
	if err := p.Print(sampleAgenda(t)); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	var got struct {
		Days []struct {
			Date  string `yaml:"date"`
			Items []struct {
				Key string `yaml:"key"`
			} `yaml:"items"`
		} `yaml:"days"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Output is not YAML: %v", err)
	}
	if len(got.Days) != 2 || got.Days[1].Date != "02/06/2026" {
		t.Errorf("Wrong days: %+v", got.Days)
	}
	if got.Days[1].Items[0].Key != "02/06/2026_0" {
		t.Errorf("Wrong item key: %+v", got.Days[1].Items)
	}
}
