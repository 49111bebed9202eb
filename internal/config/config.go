package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

type Config struct {
	// Source settings
	Source       string
	FetchTimeout time.Duration
	UserAgent    string

	// Display settings
	DateFormat string
	ShowPast   bool
	WrapText   bool

	// UI settings
	Colors      map[string]string
	KeyBindings map[string]string

	// Behavior settings
	AutoRefresh bool
	RefreshRate time.Duration

	// Offline cache
	CacheDir       string
	CacheName      string
	OfflineAssets  []string
	BypassPatterns []string

	LogFile string
}

var (
	setRe   = regexp.MustCompile(`^set\s+(\w+)\s+(.+)$`)
	bindRe  = regexp.MustCompile(`^bind\s+(\S+)\s+(\S+)$`)
	colorRe = regexp.MustCompile(`^color\s+(\w+)\s+(.+)$`)
)

func DefaultConfig() *Config {
	return &Config{
		FetchTimeout: 30 * time.Second,
		UserAgent:    "agenda/0.1",

		DateFormat: "Monday 2 January 2006",
		ShowPast:   false,
		WrapText:   true,

		Colors: map[string]string{
			"normal":      "252",
			"today":       "220",
			"selected":    "220",
			"done":        "241",
			"unscheduled": "213",
			"running":     "39",
			"error":       "196",
			"header":      "220",
		},

		KeyBindings: map[string]string{
			"q":     "quit",
			"?":     "help",
			"r":     "refresh",
			"j":     "next_item",
			"k":     "prev_item",
			"J":     "next_day",
			"K":     "prev_day",
			"t":     "today",
			" ":     "toggle",
			"enter": "toggle",
		},

		AutoRefresh: true,
		RefreshRate: 5 * time.Minute,

		CacheDir:       defaultCacheDir(),
		CacheName:      "agenda-v1",
		BypassPatterns: []string{"localhost", "127.0.0.1"},

		LogFile: "",
	}
}

// LoadConfig reads the first config file found in the usual locations.
// Missing files are not an error.
func LoadConfig() (*Config, error) {
	configPaths := []string{
		os.Getenv("AGENDA_CONFIG"),
		filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "agenda", "agendarc"),
		filepath.Join(os.Getenv("HOME"), ".config", "agenda", "agendarc"),
		filepath.Join(os.Getenv("HOME"), ".agendarc"),
	}

	for _, path := range configPaths {
		if path == "" || path == filepath.Join("agenda", "agendarc") {
			continue
		}

		if _, err := os.Stat(path); err == nil {
			return LoadConfigFrom(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadConfigFrom reads the config file at path over the defaults.
func LoadConfigFrom(path string) (*Config, error) {
	config := DefaultConfig()

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path %s: %w", path, err)
	}
	if err := config.loadFromFile(expanded); err != nil {
		return nil, fmt.Errorf("error loading config from %s: %w", expanded, err)
	}
	return config, nil
}

func (c *Config) loadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if err := c.parseLine(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	return scanner.Err()
}

func (c *Config) parseLine(line string) error {
	// Skip comments and empty lines
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	if matches := setRe.FindStringSubmatch(line); matches != nil {
		return c.Set(matches[1], matches[2])
	}

	// bind key action
	if matches := bindRe.FindStringSubmatch(line); matches != nil {
		key := matches[1]
		if key == "space" {
			key = " "
		}
		c.KeyBindings[key] = matches[2]
		return nil
	}

	// color element color_spec
	if matches := colorRe.FindStringSubmatch(line); matches != nil {
		c.Colors[matches[1]] = matches[2]
		return nil
	}

	return fmt.Errorf("unknown config line: %s", line)
}

// Set assigns a config variable from its textual value. Used by the rc file
// parser and by environment/flag overrides.
func (c *Config) Set(name, value string) error {
	// Remove quotes if present
	value = strings.Trim(strings.TrimSpace(value), `"'`)

	switch name {
	case "source":
		if isURL(value) {
			c.Source = value
		} else {
			c.Source = expandPath(value)
		}

	case "fetch_timeout":
		d, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid fetch_timeout: %s", value)
		}
		c.FetchTimeout = d

	case "user_agent":
		c.UserAgent = value

	case "date_format":
		c.DateFormat = value

	case "show_past":
		c.ShowPast = parseBool(value)

	case "wrap_text":
		c.WrapText = parseBool(value)

	case "auto_refresh":
		c.AutoRefresh = parseBool(value)

	case "refresh_rate":
		d, err := parseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid refresh_rate: %s", value)
		}
		c.RefreshRate = d

	case "cache_dir":
		c.CacheDir = expandPath(value)

	case "cache_name":
		if value == "" {
			return fmt.Errorf("cache_name must not be empty")
		}
		c.CacheName = value

	case "offline_assets":
		c.OfflineAssets = splitList(value)

	case "bypass_patterns":
		c.BypassPatterns = splitList(value)

	case "log_file":
		c.LogFile = expandPath(value)

	default:
		return fmt.Errorf("unknown config variable: %s", name)
	}

	return nil
}

// parseDuration accepts Go durations or a bare number of seconds.
func parseDuration(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err == nil {
		return d, nil
	}
	seconds, err2 := strconv.Atoi(value)
	if err2 != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func parseBool(value string) bool {
	return strings.ToLower(value) == "true" || value == "1"
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func isURL(value string) bool {
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func expandPath(value string) string {
	expanded, err := homedir.Expand(value)
	if err != nil {
		return value
	}
	return expanded
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "agenda")
	}
	return expandPath("~/.cache/agenda")
}
