package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/cwarden/agenda/internal/config"
	"github.com/cwarden/agenda/internal/logger"
	"github.com/cwarden/agenda/internal/offline"
	"github.com/cwarden/agenda/internal/source"
	agendasync "github.com/cwarden/agenda/internal/sync"
	"github.com/cwarden/agenda/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	cfgFile string
	cfg     *config.Config
	log     logger.Logger = logger.NewNopLogger()
	v       = viper.New()
)

// overrides are config variables that may also come from AGENDA_* env
// variables or flags.
var overrides = []string{
	"source",
	"refresh_rate",
	"auto_refresh",
	"fetch_timeout",
	"show_past",
	"cache_dir",
	"cache_name",
	"log_file",
}

var rootCmd = &cobra.Command{
	Use:   "agenda",
	Short: "A terminal checklist for a schedule kept in a published spreadsheet",
	Long: `Agenda fetches a spreadsheet published as CSV, turns it into a daily
schedule and shows it as an interactive checklist. The sheet is re-read
periodically and on demand; checkbox state lasts for the session only.`,
	PersistentPreRunE: initConfig,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return log.Close()
	},
	RunE:         runTUI,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Path to config file")
	flags.StringP("source", "s", "", "CSV URL or file to read the schedule from")
	flags.String("refresh-rate", "", "Interval between automatic syncs (e.g. 5m)")
	flags.String("log-file", "", "Write logs to this file")
	flags.String("cache-dir", "", "Directory holding the offline caches")

	_ = v.BindPFlag("source", flags.Lookup("source"))
	_ = v.BindPFlag("refresh_rate", flags.Lookup("refresh-rate"))
	_ = v.BindPFlag("log_file", flags.Lookup("log-file"))
	_ = v.BindPFlag("cache_dir", flags.Lookup("cache-dir"))

	v.SetEnvPrefix("AGENDA")
	v.AutomaticEnv()
}

// initConfig loads the rc file and applies env and flag overrides on top.
func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadConfigFrom(cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, name := range overrides {
		if !v.IsSet(name) {
			continue
		}
		if err := cfg.Set(name, v.GetString(name)); err != nil {
			return err
		}
	}

	if cfg.LogFile != "" {
		fl, err := logger.NewFileLogger(cfg.LogFile)
		if err != nil {
			return err
		}
		log = fl
	}
	return nil
}

// newSource builds the configured source, routing HTTP through the offline
// cache when it can be opened.
func newSource() (source.Source, error) {
	opts := source.Options{
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.UserAgent,
	}

	cache, err := offline.Open(cfg.CacheDir, cfg.CacheName)
	if err != nil {
		log.Warning("offline cache unavailable: %v", err)
	} else {
		opts.Transport = offline.NewTransport(cache, http.DefaultTransport, cfg.BypassPatterns, log)
	}

	return source.New(cfg.Source, opts)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Piped output gets the plain listing instead of a TUI.
	if fd := os.Stdout.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return runList(cmd, args)
	}

	src, err := newSource()
	if err != nil {
		return err
	}

	if removed, err := offline.Activate(cfg.CacheDir, []string{cfg.CacheName}); err != nil {
		log.Warning("prune caches: %v", err)
	} else if len(removed) > 0 {
		log.Info("removed old caches: %v", removed)
	}

	syncer := agendasync.New(src, agendasync.Options{
		RefreshRate: cfg.RefreshRate,
		AutoRefresh: cfg.AutoRefresh,
		Logger:      log,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = syncer.Run(ctx)
	}()

	model := ui.NewModel(cfg, syncer, agendasync.NewChecklist())
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err = p.Run()
	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
