package cmd

import (
	"time"

	"github.com/cwarden/agenda/internal/printer"
	"github.com/cwarden/agenda/internal/schedule"
	agendasync "github.com/cwarden/agenda/internal/sync"
	"github.com/spf13/cobra"
)

var (
	listAll    bool
	listOutput string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the upcoming schedule and exit",
	Long: `Sync the sheet once and print the upcoming days, with pending
unscheduled activities listed under today.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include days before today")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "pretty", "Output format: pretty, json or yaml")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := printer.ParseFormat(listOutput)
	if err != nil {
		return err
	}

	src, err := newSource()
	if err != nil {
		return err
	}

	syncer := agendasync.New(src, agendasync.Options{Logger: log})
	if err := syncer.Sync(cmd.Context()); err != nil {
		return err
	}

	agenda := syncer.State().Agenda(time.Now(), schedule.AgendaOptions{
		IncludePast: listAll || cfg.ShowPast,
	})

	p := &printer.Printer{
		Format:     format,
		DateFormat: cfg.DateFormat,
		Out:        cmd.OutOrStdout(),
	}
	return p.Print(agenda)
}
