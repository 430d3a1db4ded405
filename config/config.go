// Package config holds the settings shared by the draughtsman tools. Values
// come from command-line flags, overridable through the environment with a
// DRAUGHTSMAN_ prefix, e.g. DRAUGHTSMAN_DEBUG=1.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "draughtsman"

type Config struct {
	v    *viper.Viper
	args []string
}

// Load populates the config from args, which should not include the
// program name. Call it before reading any values.
func (c *Config) Load(args []string) error {
	c.v = viper.New()

	fs := pflag.NewFlagSet("draughtsman", pflag.ContinueOnError)
	fs.Bool("debug", false, "debug logging on")
	fs.Int("workers", 0, "number of files scanned concurrently; 0 means one per CPU")
	fs.String("report", "", "write a YAML scan report to this path")
	fs.Bool("strict", false, "treat duplicate games as failures")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.v.BindPFlags(fs); err != nil {
		return err
	}
	c.args = fs.Args()

	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	return nil
}

func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// Args returns the positional arguments left over after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

// Set overrides a value, typically from tests.
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// AllSettings returns every setting, for logging at startup.
func (c *Config) AllSettings() map[string]any {
	return c.v.AllSettings()
}
