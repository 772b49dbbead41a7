package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. YBTOP_HOSTS.
const EnvPrefix = "YBTOP"

// Config represents the application's configuration structure.
type Config struct {
	Hosts                []string      `mapstructure:"hosts"`
	Ports                []string      `mapstructure:"ports"`
	Update               int           `mapstructure:"update"`
	Idle                 bool          `mapstructure:"idle"`
	Plain                bool          `mapstructure:"plain"`
	Parallel             int           `mapstructure:"parallel"`
	Path                 string        `mapstructure:"path"`
	ProbeTimeout         time.Duration `mapstructure:"probe-timeout"`
	RequestTimeout       time.Duration `mapstructure:"request-timeout"`
	FailOnTransportError bool          `mapstructure:"fail-on-transport-error"`
	SlowQuery            time.Duration `mapstructure:"slow-query"`
	LogLevel             string        `mapstructure:"log-level"`
	LogFile              string        `mapstructure:"log-file"`
}

// Interval is the pause between two sweeps.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Update) * time.Second
}

// field: default value
var defaults = map[string]interface{}{
	"hosts":                   "192.168.66.80,192.168.66.81,192.168.66.82",
	"ports":                   "13000,12000",
	"update":                  3,
	"idle":                    false,
	"plain":                   false,
	"parallel":                1,
	"path":                    "/rpcz",
	"probe-timeout":           time.Second,
	"request-timeout":         5 * time.Second,
	"fail-on-transport-error": false,
	"slow-query":              10 * time.Second,
	"log-level":               "WARNING",
	"log-file":                "",
}

// NewFlagSet declares the command line flags. Parsing is left to the caller
// so tests can feed arguments directly.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("hosts", "h", defaults["hosts"].(string), "hostnames, comma separated")
	fs.StringP("ports", "p", defaults["ports"].(string), "port numbers, comma separated. YSQL:13000, YCQL:12000")
	fs.IntP("update", "u", defaults["update"].(int), "update interval in seconds")
	fs.BoolP("idle", "i", false, "show idle SQL sessions")
	fs.Bool("plain", false, "print a plain table instead of the interactive view")
	fs.Int("parallel", defaults["parallel"].(int), "number of nodes probed at the same time")
	fs.String("path", defaults["path"].(string), "diagnostics path requested on every node")
	fs.Duration("probe-timeout", defaults["probe-timeout"].(time.Duration), "timeout of the port reachability check")
	fs.Duration("request-timeout", defaults["request-timeout"].(time.Duration), "timeout of the diagnostics request")
	fs.Bool("fail-on-transport-error", false, "exit when a reachable node fails to answer instead of skipping it")
	fs.Duration("slow-query", defaults["slow-query"].(time.Duration), "elapsed time after which a query is flagged")
	fs.String("log-level", defaults["log-level"].(string), "DEBUG, INFO, NOTICE, WARNING, ERROR or CRITICAL")
	fs.String("log-file", "", "write logs to this file (default stderr, or nowhere in interactive mode)")
	fs.String("config", "", "optional config file (json, yaml or toml)")
	return fs
}

// InitConfig resolves the configuration from, in decreasing precedence,
// command line flags, YBTOP_* environment variables, the optional config
// file and the built-in defaults.
func InitConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("could not bind flags: %w", err)
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	config.Hosts = splitList(v.Get("hosts"))
	config.Ports = splitList(v.Get("ports"))

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	var errs []error
	if len(c.Hosts) == 0 {
		errs = append(errs, errors.New("at least one host is required"))
	}
	if len(c.Ports) == 0 {
		errs = append(errs, errors.New("at least one port is required"))
	}
	if c.Update < 1 {
		errs = append(errs, fmt.Errorf("update interval must be at least 1 second, got %d", c.Update))
	}
	if c.Parallel < 1 {
		errs = append(errs, fmt.Errorf("parallel must be at least 1, got %d", c.Parallel))
	}
	if !strings.HasPrefix(c.Path, "/") {
		errs = append(errs, fmt.Errorf("path must start with '/', got %q", c.Path))
	}
	return errors.Join(errs...)
}

// splitList accepts either a comma separated string (flags, env) or a list
// (config files) and drops empty entries.
func splitList(raw interface{}) []string {
	var parts []string
	switch val := raw.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []interface{}:
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
