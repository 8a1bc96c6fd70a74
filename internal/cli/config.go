package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const maxWalkDepth = 25

// Config represents the joinguard configuration from joinguard.yaml.
type Config struct {
	// Chain is the default chain file path.
	Chain string `mapstructure:"chain"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Per-command configuration
	Check CheckConfig `mapstructure:"check"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// CheckConfig holds check command settings.
type CheckConfig struct {
	SkipValidation bool `mapstructure:"skip_validation"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none
// found), and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("JOINGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DATABASE_URL is honored without the prefix, as is conventional.
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.SetDefault("database.url", dbURL)
	}

	configFile := explicitConfigPath
	if configFile == "" {
		configFile = discoverConfig()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, configFile, fmt.Errorf("reading %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configFile, fmt.Errorf("parsing configuration: %w", err)
	}
	return &cfg, configFile, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
}

// discoverConfig walks from the working directory upward looking for
// joinguard.yaml or joinguard.yml.
func discoverConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for range maxWalkDepth {
		for _, name := range []string{"joinguard.yaml", "joinguard.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// DatabaseURL assembles the connection URL, preferring an explicit URL over
// the individual host/port/name fields.
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	if c.Database.Host == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:   "/" + c.Database.Name,
	}
	if c.Database.User != "" {
		if c.Database.Password != "" {
			u.User = url.UserPassword(c.Database.User, c.Database.Password)
		} else {
			u.User = url.User(c.Database.User)
		}
	}
	if c.Database.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", c.Database.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
