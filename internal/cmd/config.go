package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-ap/errors"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"

	"git.sr.ht/~mariusor/guildcal"
	"git.sr.ht/~mariusor/guildcal/calendar"
	"git.sr.ht/~mariusor/guildcal/discord"
	"git.sr.ht/~mariusor/guildcal/publish"
	"git.sr.ht/~mariusor/guildcal/trigger"
)

const (
	DefaultListen  = "localhost:9999"
	DefaultBaseURL = "http://" + DefaultListen

	TokenEnv = "DISCORD_TOKEN"
)

// Config holds the settings shared by all commands. It can be loaded from a
// YAML file, command line flags override the values in the file.
type Config struct {
	// Token is the Discord bot token.
	Token string `yaml:"token"`
	// Output is the folder the calendars are written to.
	Output string `yaml:"output"`
	// Data is the folder holding the publication ledger.
	Data string `yaml:"data"`
	// Listen is the address the calendars are served on, empty disables serving.
	Listen string `yaml:"listen"`
	// BaseURL is the public address of the served calendars.
	BaseURL string `yaml:"base_url"`
	// SampleSize is the number of interested users named in descriptions.
	SampleSize int `yaml:"sample_size"`
	// Timeout bounds every request to the Discord API.
	Timeout time.Duration `yaml:"timeout"`
	// PublishTimeout bounds a full publication of one guild.
	PublishTimeout time.Duration `yaml:"publish_timeout"`
	// Refresh is a cron schedule for republishing every guild, empty disables it.
	Refresh string `yaml:"refresh"`
	// Parallel is the number of guilds published at the same time on startup.
	Parallel int `yaml:"parallel"`
	Debug    bool `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		Output:         ".",
		Data:           DataPath(),
		BaseURL:        DefaultBaseURL,
		SampleSize:     calendar.DefaultSampleSize,
		Timeout:        discord.DefaultTimeout,
		PublishTimeout: publish.DefaultTimeout,
		Parallel:       trigger.DefaultParallel,
	}
}

// Normalize fills in the defaults for the missing values.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.Data == "" {
		c.Data = def.Data
	}
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.SampleSize <= 0 {
		c.SampleSize = def.SampleSize
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = def.PublishTimeout
	}
	if c.Parallel <= 0 {
		c.Parallel = def.Parallel
	}
}

// LoadConfig reads the YAML configuration at path. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	conf := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return conf, errors.Annotatef(err, "unable to read configuration %s", path)
		}
		if err := yaml.Unmarshal(data, &conf); err != nil {
			return conf, errors.Annotatef(err, "invalid configuration %s", path)
		}
	}
	conf.Normalize()
	return conf, nil
}

// loadConfig merges the configuration file with the flags of c.
func loadConfig(c *cli.Context) (Config, error) {
	conf, err := LoadConfig(c.GlobalString("config"))
	if err != nil {
		return conf, err
	}
	if c.GlobalIsSet("path") {
		conf.Output = c.GlobalString("path")
	}
	if c.GlobalIsSet("data") {
		conf.Data = c.GlobalString("data")
	}
	if t := c.GlobalString("token"); t != "" {
		conf.Token = t
	}
	if c.GlobalBool("debug") || c.Bool("debug") {
		conf.Debug = true
	}
	if c.IsSet("listen") {
		conf.Listen = c.String("listen")
	}
	if c.IsSet("base-url") {
		conf.BaseURL = c.String("base-url")
	}
	if c.IsSet("refresh") {
		conf.Refresh = c.String("refresh")
	}
	return conf, nil
}

func MkDirIfNotExists(p string) error {
	fi, err := os.Stat(p)
	if err != nil && os.IsNotExist(err) {
		err = os.MkdirAll(p, os.ModeDir|os.ModePerm|0700)
	}
	if err != nil {
		return err
	}
	fi, err = os.Stat(p)
	if err != nil {
		return err
	} else if !fi.IsDir() {
		return errors.Newf("path exists, and is not a folder %s", p)
	}
	return nil
}

// DataPath is the XDG data folder of the application.
func DataPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, guildcal.AppName)
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", guildcal.AppName)
}
