// Package printer writes an agenda to a terminal or as structured data.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"

	"github.com/cwarden/agenda/internal/schedule"
)

type Format string

const (
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
)

// ParseFormat accepts the names used by the -o flag.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatPretty:
		return FormatPretty, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want pretty, json or yaml)", s)
	}
}

type Printer struct {
	Format Format
	// DateFormat is the Go layout for day titles in pretty output.
	DateFormat string
	Out        io.Writer
}

func (p *Printer) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return color.Output
}

// Print writes the agenda in the printer's format.
func (p *Printer) Print(agenda schedule.Agenda) error {
	switch p.Format {
	case FormatJSON:
		enc := json.NewEncoder(p.out())
		enc.SetIndent("", "  ")
		return enc.Encode(agenda)
	case FormatYAML:
		b, err := yaml.Marshal(agenda)
		if err != nil {
			return fmt.Errorf("marshal agenda: %w", err)
		}
		_, err = p.out().Write(b)
		return err
	default:
		p.pretty(agenda)
		return nil
	}
}

func (p *Printer) pretty(agenda schedule.Agenda) {
	out := p.out()

	if len(agenda.Days) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(out, " nothing scheduled\n")
		return
	}

	title := color.New(color.Bold, color.Underline)
	today := color.New(color.Bold, color.Underline, color.FgHiYellow)
	pending := color.New(color.FgHiMagenta)
	faint := color.New(color.Faint)

	for i, day := range agenda.Days {
		if i > 0 {
			_, _ = fmt.Fprintln(out)
		}
		if day.IsToday {
			_, _ = today.Fprintln(out, p.dayTitle(day)+" (today)")
		} else {
			_, _ = title.Fprintln(out, p.dayTitle(day))
		}

		tbl := uitable.New()
		tbl.Separator = " "
		for _, item := range day.Items {
			a := item.Activity
			text := a.Activity
			if item.IsUnscheduled {
				text = pending.Sprint(text)
			}
			tbl.AddRow(a.Time, a.Emoji, text)
			if a.Running != nil {
				tbl.AddRow("", "", faint.Sprint(runningLine(a.Running)))
			}
		}
		_, _ = fmt.Fprintln(out, tbl)
	}
}

func (p *Printer) dayTitle(day schedule.Day) string {
	if p.DateFormat == "" || day.Date.IsZero() {
		return day.Key
	}
	return day.Date.Format(p.DateFormat)
}

func runningLine(r *schedule.RunningDetails) string {
	var parts []string
	for _, s := range []string{r.Tipo, r.Distanza, r.Ritmo, r.Note} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " · ")
}
