package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"

	"go.uber.org/zap"
)

type Config struct {
	*Settings
}

type Settings struct {
	// Environment selects config.<env>.yml. Empty means CONFIG_ENV, "test"
	// under go test, or "development".
	Environment string
	// ENVPrefix prefixes environment overrides. "-" disables the prefix.
	ENVPrefix string
	Debug     bool
	Logger    *zap.Logger

	ErrorOnUnmatchedKeys bool
}

// New initialize a Config
func New(s *Settings) *Config {
	if s == nil {
		s = &Settings{}
	}
	if os.Getenv("CONFIG_DEBUG_MODE") != "" {
		s.Debug = true
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	return &Config{Settings: s}
}

var testRegexp = regexp.MustCompile(`_test|(\.test$)`)

func (c *Config) GetEnvironment() string {
	if c.Environment != "" {
		return c.Environment
	}
	if env := os.Getenv("CONFIG_ENV"); env != "" {
		return env
	}
	if testRegexp.MatchString(os.Args[0]) {
		return "test"
	}
	return "development"
}

func (c *Config) envPrefix() string {
	if c.ENVPrefix != "" {
		return c.ENVPrefix
	}
	if prefix := os.Getenv("CONFIG_ENV_PREFIX"); prefix != "" {
		return prefix
	}
	return "CONFIG"
}

// Load fills cfg from struct defaults, then files, then the environment.
// Missing files are skipped.
func (c *Config) Load(cfg interface{}, files ...string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config %T should be a pointer to a struct", cfg)
	}

	if err := processDefaults(v.Elem()); err != nil {
		return err
	}

	for _, file := range c.configurationFiles(files...) {
		c.Logger.Debug("loading configuration", zap.String("file", file))
		if err := decodeFile(cfg, file, c.ErrorOnUnmatchedKeys); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	var prefixes []string
	if prefix := c.envPrefix(); prefix != "-" {
		prefixes = []string{prefix}
	}
	if err := c.processEnv(v.Elem(), prefixes); err != nil {
		return err
	}

	if c.Debug {
		c.Logger.Debug("configuration loaded", zap.String("env", c.GetEnvironment()), zap.Any("config", cfg))
	}
	return nil
}

func Load(cfg interface{}, files ...string) (*Config, error) {
	c := New(nil)
	if err := c.Load(cfg, files...); err != nil {
		return nil, err
	}
	return c, nil
}
