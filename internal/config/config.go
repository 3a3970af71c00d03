// Package config resolves lw settings from defaults, an optional
// config.yaml, LW_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const AppName = "lw"

// Config is the resolved settings for one run.
type Config struct {
	File       string // entry document
	Theme      string
	LogLevel   string
	LogFile    string // empty disables logging
	AllowEmpty bool   // whether the editor may commit a blank entry
	ConfigFile string // config.yaml actually read, if any
}

// Dir is the default directory for the entry file, log and config.yaml.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := homedir.Dir()
		if herr != nil {
			return "", fmt.Errorf("config dir: %w", errors.Join(err, herr))
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName), nil
}

// New returns a viper instance with lw's defaults and env binding.
func New() (*viper.Viper, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetDefault("file", filepath.Join(dir, "entries.json"))
	v.SetDefault("theme", "classic")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dir, AppName+".log"))
	v.SetDefault("editor.allow_empty", true)

	v.SetConfigName("config") // .yaml is implicit
	v.SetConfigType("yaml")
	if override := os.Getenv("LW_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath(dir)

	v.SetEnvPrefix("LW")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()
	return v, nil
}

// BindFlags lets command-line flags win over file and env values.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range map[string]string{
		"file":      "file",
		"theme":     "theme",
		"log.level": "log-level",
		"log.file":  "log-file",
	} {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads config.yaml when present and resolves every setting.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	file, err := homedir.Expand(v.GetString("file"))
	if err != nil {
		return Config{}, fmt.Errorf("expand file path: %w", err)
	}
	logFile, err := homedir.Expand(v.GetString("log.file"))
	if err != nil {
		return Config{}, fmt.Errorf("expand log path: %w", err)
	}
	return Config{
		File:       file,
		Theme:      v.GetString("theme"),
		LogLevel:   v.GetString("log.level"),
		LogFile:    logFile,
		AllowEmpty: v.GetBool("editor.allow_empty"),
		ConfigFile: v.ConfigFileUsed(),
	}, nil
}
