package flags

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const (
	// Env vars
	EnvVarConfigFile = "GQLTZ_CONFIG_FILE"
	EnvVarLogPath    = "GQLTZ_LOG_PATH"
	EnvVarLogLevel   = "GQLTZ_LOG_LEVEL"
	EnvVarTimezone   = "GQLTZ_TIMEZONE"

	// Defaults
	DefaultConfigFile = ".gqltz.toml"
	DefaultLogPath    = ""
	DefaultLogLevel   = "info"
	DefaultTimezone   = ""

	// Flag names
	FlagNameConfigFile = "config-file"
	FlagNameLogPath    = "log-path"
	FlagNameLogLevel   = "log-level"
	FlagNameTimezone   = "timezone"
)

var (
	ConfigFile string
	LogPath    string
	LogLevel   string

	// Timezone is the IANA name of the wall-clock timezone clients work in.
	// Empty means the configured timezone, or the machine's local time when none is configured.
	Timezone string
)

func InitFlags(fs *pflag.FlagSet) {
	initConfigFile(fs)
	initLogger(fs)
	initTimezone(fs)
}

func initConfigFile(fs *pflag.FlagSet) {
	if ConfigFile == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarConfigFile)); env != "" {
			ConfigFile = env
		} else {
			ConfigFile = DefaultConfigFile
		}
	}
	fs.StringVar(&ConfigFile, FlagNameConfigFile, ConfigFile, "path to config file")
}

func initLogger(fs *pflag.FlagSet) {
	if LogPath == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarLogPath)); env != "" {
			LogPath = env
		} else {
			LogPath = DefaultLogPath
		}
	}
	fs.StringVar(&LogPath, FlagNameLogPath, LogPath, "path to generated log file")

	if LogLevel == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarLogLevel)); env != "" {
			LogLevel = strings.ToLower(env)
		} else {
			LogLevel = DefaultLogLevel
		}
	}
	fs.StringVar(&LogLevel, FlagNameLogLevel, LogLevel, "log level for gqltz logs")
}

func initTimezone(fs *pflag.FlagSet) {
	if Timezone == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarTimezone)); env != "" {
			Timezone = env
		} else {
			Timezone = DefaultTimezone
		}
	}
	fs.StringVar(
		&Timezone,
		FlagNameTimezone,
		Timezone,
		"IANA timezone of the client wall-clock (e.g. Asia/Kolkata), defaults to the configured or local timezone",
	)
}
