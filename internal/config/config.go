package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config captures the notifier's external configuration. It is resolved once
// at startup and passed explicitly into each component; nothing reads it from
// ambient global state.
type Config struct {
	GitHub    GitHubConfig    `yaml:"github"`
	Columns   ColumnsConfig   `yaml:"columns"`
	Schedules SchedulesConfig `yaml:"schedules"`
	Notifier  NotifierConfig  `yaml:"notifier"`
	Tracker   TrackerConfig   `yaml:"tracker"`

	// Mention is the static roster. Each entry is either a bare GitHub login
	// or "login:display" when the chat display name differs from the login.
	// When empty, the roster is fetched from the organization member directory.
	Mention []string `yaml:"mention"`

	// MeetingMention lists the handles pinged by the meeting reminder.
	MeetingMention []string `yaml:"meeting_mention"`

	// Bots lists accounts excluded from the idle ("no tasks") line.
	Bots []string `yaml:"bots"`

	// ListenAddr is the address for the healthz/status HTTP server.
	// Empty disables the server.
	ListenAddr string `yaml:"listen_addr"`

	Log LogConfig `yaml:"log"`
}

type GitHubConfig struct {
	Token        string `yaml:"token"`
	Organization string `yaml:"organization"`
}

type ColumnsConfig struct {
	// ToDo and PullRequests are project-column node IDs.
	ToDo         string `yaml:"todo"`
	PullRequests string `yaml:"pull_requests"`
}

type SchedulesConfig struct {
	// Cron expressions. An empty expression disables the corresponding job.
	ToDo         string `yaml:"todo"`
	PullRequests string `yaml:"pull_requests"`
	Meeting      string `yaml:"meeting"`

	// Timezone is the IANA zone the expressions are evaluated in.
	Timezone string `yaml:"timezone"`
}

type NotifierConfig struct {
	// URL is the chat-bot webhook endpoint messages are POSTed to.
	URL string `yaml:"url"`
}

type TrackerConfig struct {
	// URL and Token configure the error catcher. Empty URL disables it.
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Schedules.Timezone == "" {
		c.Schedules.Timezone = "UTC"
	}
	if len(c.Bots) == 0 {
		c.Bots = []string{"dependabot"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that required configuration is present and well-formed.
// Missing schedules are not errors: a job without a schedule simply is not
// started.
func (c *Config) Validate() error {
	if c.GitHub.Token == "" {
		return errors.New("github.token is required")
	}
	if c.Notifier.URL == "" {
		return errors.New("notifier.url is required")
	}
	if c.Schedules.ToDo != "" && c.Columns.ToDo == "" {
		return errors.New("schedules.todo is set but columns.todo is empty")
	}
	if c.Schedules.PullRequests != "" && c.Columns.PullRequests == "" {
		return errors.New("schedules.pull_requests is set but columns.pull_requests is empty")
	}
	if len(c.Mention) == 0 && c.GitHub.Organization == "" {
		return errors.New("either mention or github.organization must be set")
	}
	return nil
}
