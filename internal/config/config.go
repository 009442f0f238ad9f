package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Blob storage (Azure or Azurite)
	ConnectionString string `mapstructure:"connection_string" yaml:"connection_string"`
	APIVersion       string `mapstructure:"api_version" yaml:"api_version,omitempty"`
	Container        string `mapstructure:"container" yaml:"container" validate:"required,min=3,max=63"`
	BlobName         string `mapstructure:"blob_name" yaml:"blob_name" validate:"required"`

	// Outputs
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`
	ResultsFile     string `mapstructure:"results_file" yaml:"results_file" validate:"required"`
	ChartsFile      string `mapstructure:"charts_file" yaml:"charts_file" validate:"required"`
	MetricsTextfile string `mapstructure:"metrics_textfile" yaml:"metrics_textfile,omitempty"`

	// Processing
	TopN             int    `mapstructure:"top_n" yaml:"top_n" validate:"gte=1,lte=1000"`
	DecimalSeparator string `mapstructure:"decimal_separator" yaml:"decimal_separator" validate:"oneof=. 0x2C"`
	SheetName        string `mapstructure:"sheet_name" yaml:"sheet_name,omitempty"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`

	// HTTP
	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec" validate:"gte=0"`
}

// fallbackConnEnv is the variable the Azure tooling and Azurite docs use.
const fallbackConnEnv = "AZURE_STORAGE_CONNECTION_STRING"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Dir returns ~/.dietloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dietloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dietloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	// holds the storage key
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. cfgFile overrides the default location.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DIETLOOM")
	v.AutomaticEnv()

	v.SetDefault("connection_string", "")
	v.SetDefault("api_version", "")
	v.SetDefault("container", "diet-data")
	v.SetDefault("blob_name", "All_Diets.csv")
	v.SetDefault("output_dir", "outputs")
	v.SetDefault("results_file", "nosql_results.json")
	v.SetDefault("charts_file", "charts.xlsx")
	v.SetDefault("metrics_textfile", "")
	v.SetDefault("top_n", 5)
	v.SetDefault("decimal_separator", ".")
	v.SetDefault("sheet_name", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("http_timeout_sec", 60)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(cfgFile != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if strings.TrimSpace(c.ConnectionString) == "" {
		c.ConnectionString = os.Getenv(fallbackConnEnv)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks field constraints.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ResultsPath joins the output directory and results file name.
func (c *Global) ResultsPath() string { return joinOutput(c.OutputDir, c.ResultsFile) }

// ChartsPath joins the output directory and charts file name.
func (c *Global) ChartsPath() string { return joinOutput(c.OutputDir, c.ChartsFile) }

func joinOutput(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// DecimalRune returns the decimal separator as a rune.
func (c *Global) DecimalRune() rune {
	if c.DecimalSeparator == "," {
		return ','
	}
	return '.'
}
