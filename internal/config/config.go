// Package config loads the command-line configuration: an optional YAML
// file whose values are then overridden by flags and validated as a whole.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/regiongraph/internal/logging"
	"github.com/aretw0/regiongraph/pkg/pipeline"
)

// DefaultAddr is where serve listens when nothing else is configured.
const DefaultAddr = "127.0.0.1:8680"

// Config is pipeline.Config plus the settings only the binary cares about.
type Config struct {
	pipeline.Config `yaml:",inline"`

	LogLevel    string `yaml:"log_level" validate:"loglevel"`
	RedisURL    string `yaml:"redis_url" validate:"omitempty,url"`
	MetricsFile string `yaml:"metrics_file"`
	Addr        string `yaml:"addr" validate:"required,hostname_port"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Config: pipeline.Config{
			Jobs: []string{pipeline.JobRegions},
		},
		LogLevel: "info",
		Addr:     DefaultAddr,
	}
}

// Load reads path over Default. An empty path returns Default unchanged.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("loglevel", validateLogLevel)
	validate.RegisterStructValidation(validateOutputs, Config{})
}

func validateLogLevel(fl validator.FieldLevel) bool {
	_, err := logging.ParseLevel(fl.Field().String())
	return err == nil
}

// Requesting formats without somewhere to write them is a mistake, not a
// dry run.
func validateOutputs(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if len(cfg.Formats) > 0 && cfg.OutputDir == "" {
		sl.ReportError(cfg.OutputDir, "OutputDir", "OutputDir", "required_with_formats", "")
	}
}

// Validate checks every field and reports all failures at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
