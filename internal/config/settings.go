package config

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RPCORE_LOG_LEVEL.
const EnvPrefix = "RPCORE"

// Settings are the CLI options that are not part of a scenario.
type Settings struct {
	// TablesDir overrides the embedded tax tables when set.
	TablesDir string         `mapstructure:"tables_dir"`
	Log       LogSettings    `mapstructure:"log"`
	Output    OutputSettings `mapstructure:"output"`
	Compare   CompareOptions `mapstructure:"compare"`
}

// LogSettings configures logging.
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputSettings selects the report format.
type OutputSettings struct {
	Format string `mapstructure:"format"`
}

// CompareOptions tunes the Roth comparison.
type CompareOptions struct {
	Concurrent bool `mapstructure:"concurrent"`
}

// NewViper returns a viper instance with defaults, the RPCORE_ environment
// prefix and the optional rpcore.yaml search path set up. An explicit file
// replaces the search.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("rpcore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("tables_dir", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("output.format", "console")
	v.SetDefault("compare.concurrent", true)
	return v
}

// BindFlags maps command flags onto setting keys. Flags that are absent
// from the set are skipped.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return eris.Wrapf(err, "config: bind flag %s", name)
		}
	}
	return nil
}

// LoadSettings reads the optional settings file and decodes every key.
func LoadSettings(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read settings file")
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal settings")
	}
	s.Output.Format = strings.ToLower(s.Output.Format)
	return &s, nil
}
