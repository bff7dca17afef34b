package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Source is one feed endpoint in the registry.
type Source struct {
	Name    string `yaml:"name,omitempty"`
	URL     string `yaml:"url"`
	Tier    string `yaml:"tier"`
	Enabled bool   `yaml:"enabled"`
}

// TierPolicy is the acceptance policy for one tier of sources.
type TierPolicy struct {
	Threshold       int `yaml:"threshold"`
	MaxItemsPerFeed int `yaml:"max_items_per_feed"`
	Bonus           int `yaml:"bonus"`
}

// Category is one weighted group of relevance phrases.
type Category struct {
	Weight  int      `yaml:"weight"`
	Phrases []string `yaml:"phrases"`
}

// Negatives are soft warning phrases: each match subtracts Penalty from the
// score without excluding the item outright.
type Negatives struct {
	Penalty int      `yaml:"penalty"`
	Phrases []string `yaml:"phrases"`
}

// Rule is a hard exclusion rule. Exactly one of the two forms is set:
// AnyOf rejects on any keyword hit; MainTerms/ForbiddenTerms rejects only
// when both sides match.
type Rule struct {
	Name           string   `yaml:"name"`
	AnyOf          []string `yaml:"any_of,omitempty"`
	MainTerms      []string `yaml:"main_terms,omitempty"`
	ForbiddenTerms []string `yaml:"forbidden_terms,omitempty"`
}

// NameMapping resolves a feed domain to a display name. Order matters:
// the first mapping whose domain is contained in the feed's host wins.
type NameMapping struct {
	Domain string `yaml:"domain"`
	Name   string `yaml:"name"`
}

type FetchConfig struct {
	Workers         int    `yaml:"workers"`
	Timeout         string `yaml:"timeout"`
	RequestInterval string `yaml:"request_interval"`
	MaxAge          string `yaml:"max_age"`
}

type OutputConfig struct {
	Path     string `yaml:"path"`
	MaxItems int    `yaml:"max_items"`
	Backup   bool   `yaml:"backup"`
}

type Config struct {
	Fetch       FetchConfig           `yaml:"fetch"`
	Output      OutputConfig          `yaml:"output"`
	Retention   string                `yaml:"retention,omitempty"`
	Tiers       map[string]TierPolicy `yaml:"tiers"`
	Sources     []Source              `yaml:"sources"`
	SourceNames []NameMapping         `yaml:"source_names"`
	Categories  map[string]Category   `yaml:"categories"`
	Negatives   Negatives             `yaml:"negatives"`
	Rules       []Rule                `yaml:"rules"`
}

func (f FetchConfig) WorkerCount() int {
	if f.Workers <= 0 {
		return 4
	}
	return f.Workers
}

func (f FetchConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(f.Timeout)
	if err != nil || d <= 0 {
		return 20 * time.Second
	}
	return d
}

func (f FetchConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(f.RequestInterval)
	if err != nil || d < 0 {
		return 500 * time.Millisecond
	}
	return d
}

func (f FetchConfig) MaxAgeDuration() time.Duration {
	d, err := parseDays(f.MaxAge)
	if err != nil || d <= 0 {
		return 7 * 24 * time.Hour
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	d, err := parseDays(c.Retention)
	if err != nil || d <= 0 {
		return 90 * 24 * time.Hour
	}
	return d
}

func (o OutputConfig) MaxOutputItems() int {
	if o.MaxItems <= 0 {
		return 100
	}
	return o.MaxItems
}

// parseDays accepts "Nd" day syntax in addition to time.ParseDuration forms.
func parseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// Policy returns the tier policy for a tier name. Validation guarantees every
// source references a defined tier.
func (c *Config) Policy(tier string) TierPolicy {
	return c.Tiers[tier]
}

// ResolveSourceName maps a feed URL to a display name. Mappings are scanned
// in declared order and match by substring containment of the feed's host.
// Without a mapping the name is derived from the host: strip a leading
// "www.", take the first dot-delimited label, title-case it.
func (c *Config) ResolveSourceName(feedURL string) string {
	host := hostOf(feedURL)
	for _, m := range c.SourceNames {
		if m.Domain != "" && strings.Contains(host, m.Domain) {
			return m.Name
		}
	}
	label := strings.TrimPrefix(host, "www.")
	if i := strings.IndexByte(label, '.'); i > 0 {
		label = label[:i]
	}
	if label == "" {
		return "Unknown"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "sustainnews", "config.yaml")
}

func ArchivePath() string {
	return filepath.Join(xdg.CacheHome, "sustainnews", "sustainnews.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects configurations that would make a run meaningless. These
// are fatal: a run with no sources or no keywords produces a trivially empty
// output, which is worse than failing loudly.
func Validate(cfg *Config) error {
	if len(cfg.EnabledSources()) == 0 {
		return fmt.Errorf("config: no enabled sources")
	}
	if len(cfg.Tiers) == 0 {
		return fmt.Errorf("config: no tiers defined")
	}
	if len(cfg.Categories) == 0 {
		return fmt.Errorf("config: no keyword categories defined")
	}
	for name, p := range cfg.Tiers {
		if p.Threshold < 0 {
			return fmt.Errorf("tier %q: threshold must be >= 0, got %d", name, p.Threshold)
		}
		if p.MaxItemsPerFeed <= 0 {
			return fmt.Errorf("tier %q: max_items_per_feed must be > 0, got %d", name, p.MaxItemsPerFeed)
		}
	}
	for i, s := range cfg.Sources {
		if s.URL == "" {
			return fmt.Errorf("source %d: url is required", i)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.URL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.URL, u.Scheme)
		}
		if _, ok := cfg.Tiers[s.Tier]; !ok {
			return fmt.Errorf("source %q: unknown tier %q", s.URL, s.Tier)
		}
	}
	for _, r := range cfg.Rules {
		if r.Name == "" {
			return fmt.Errorf("rule with empty name")
		}
		anyOf := len(r.AnyOf) > 0
		pair := len(r.MainTerms) > 0 && len(r.ForbiddenTerms) > 0
		if anyOf == pair {
			return fmt.Errorf("rule %q: must set either any_of or main_terms+forbidden_terms", r.Name)
		}
	}
	for name, cat := range cfg.Categories {
		if cat.Weight <= 0 {
			return fmt.Errorf("category %q: weight must be > 0", name)
		}
		if len(cat.Phrases) == 0 {
			return fmt.Errorf("category %q: no phrases", name)
		}
	}
	return nil
}
