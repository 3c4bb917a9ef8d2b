// Package config loads fedash settings from flags, FEDASH_* environment
// variables and an optional .fedash.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tableflip.dev/fedash/pkg/datafed"
)

// Keys understood in the config file and as FEDASH_<KEY> variables.
const (
	KeyEndpoint = "endpoint"
	KeyTimeout  = "timeout"
	KeyUser     = "user"
	KeyPassword = "password"
	KeyContext  = "context"
	KeyLogLevel = "log.level"
	KeyLogFile  = "log.file"
)

// Config is the resolved configuration for one run.
type Config struct {
	Endpoint string
	Timeout  time.Duration
	User     string
	Password string
	Context  string
	LogLevel string
	LogFile  string
}

// Loader resolves configuration. Each Loader owns its own viper instance.
type Loader struct {
	v    *viper.Viper
	file string
}

// NewLoader returns a loader with defaults and environment binding set up.
// An explicit file overrides the search path.
func NewLoader(file string) *Loader {
	v := viper.New()
	v.SetDefault(KeyEndpoint, datafed.DefaultEndpoint)
	v.SetDefault(KeyTimeout, "30s")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyContext, "")
	v.SetDefault(KeyUser, "")
	v.SetDefault(KeyPassword, "")

	v.SetEnvPrefix("FEDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, file: file}
}

// BindFlags lets set flags on fs win over every other source. Flags are
// matched by key name; the log.* keys use log-level and log-file.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	binds := map[string]string{
		KeyEndpoint: "endpoint",
		KeyTimeout:  "timeout",
		KeyUser:     "user",
		KeyPassword: "password",
		KeyContext:  "context",
		KeyLogLevel: "log-level",
		KeyLogFile:  "log-file",
	}
	for key, name := range binds {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("config: bind %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file, if any, and returns the resolved settings.
func (l *Loader) Load() (*Config, error) {
	if l.file != "" {
		p, err := homedir.Expand(l.file)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		l.v.SetConfigFile(p)
	} else {
		l.v.SetConfigName(".fedash") // .yaml is implicit
		if override := os.Getenv("FEDASH_CONFIG_PATH"); override != "" {
			l.v.AddConfigPath(override)
		}
		l.v.AddConfigPath("./")
		if home, err := homedir.Dir(); err == nil {
			l.v.AddConfigPath(home)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", l.v.ConfigFileUsed(), err)
		}
	}

	timeout, err := parseTimeout(l.v.GetString(KeyTimeout))
	if err != nil {
		return nil, err
	}
	logFile := l.v.GetString(KeyLogFile)
	if logFile != "" {
		if logFile, err = homedir.Expand(logFile); err != nil {
			return nil, fmt.Errorf("config: %s: %w", KeyLogFile, err)
		}
	}

	return &Config{
		Endpoint: l.v.GetString(KeyEndpoint),
		Timeout:  timeout,
		User:     l.v.GetString(KeyUser),
		Password: l.v.GetString(KeyPassword),
		Context:  l.v.GetString(KeyContext),
		LogLevel: l.v.GetString(KeyLogLevel),
		LogFile:  logFile,
	}, nil
}

// ConfigFileUsed returns the file that was read, if any.
func (l *Loader) ConfigFileUsed() string { return l.v.ConfigFileUsed() }

func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", KeyTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s must not be negative", KeyTimeout)
	}
	return d, nil
}
