package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/toyz/infrabuilder/internal/eligibility"
	"github.com/toyz/infrabuilder/internal/errors"
	"github.com/toyz/infrabuilder/internal/resolver"
)

// ConfigFileName is looked up in the workspace root when no --config is given
const ConfigFileName = "infrabuilder.toml"

// Config holds the configuration for a discovery run
type Config struct {
	// Resolver selects how dependency graphs are built: manifest or cargo
	Resolver string `toml:"resolver" validate:"oneof=manifest cargo"`

	// CargoPath is the cargo executable used by the cargo resolver
	CargoPath string `toml:"cargo_path"`

	// RequiredDependencies must all be direct dependencies of a deployable unit
	RequiredDependencies []string `toml:"required_dependencies" validate:"min=1,dive,required"`

	// Concurrency bounds how many units are processed at once
	Concurrency int `toml:"concurrency" validate:"min=1"`

	// StrictPaths validates route path syntax during assembly
	StrictPaths bool `toml:"strict_paths"`

	Preview PreviewConfig `toml:"preview"`

	// Verbose enables detailed logging and error reporting
	Verbose bool `toml:"verbose"`
	Quiet   bool `toml:"quiet"`
}

// PreviewConfig configures the local gateway preview
type PreviewConfig struct {
	Router string `toml:"router" validate:"oneof=echo gin fiber"`
	Addr   string `toml:"addr" validate:"required"`
}

// NewDefaultConfig returns the configuration used when nothing overrides it
func NewDefaultConfig() *Config {
	return &Config{
		Resolver:             resolver.ManifestResolverName,
		CargoPath:            "cargo",
		RequiredDependencies: append([]string(nil), eligibility.DefaultRequired...),
		Concurrency:          4,
		StrictPaths:          true,
		Preview: PreviewConfig{
			Router: "echo",
			Addr:   ":8080",
		},
	}
}

// LoadConfig loads configuration with priority: defaults -> file -> env.
// An explicit path must exist; otherwise infrabuilder.toml in root is used when present.
// CLI flags are applied on top by the caller.
func LoadConfig(root, path string) (*Config, error) {
	config := NewDefaultConfig()

	if path == "" {
		candidate := filepath.Join(root, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapConfigurationError(path, "read", err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, errors.WrapConfigurationError(path, "parse", err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies INFRABUILDER_* environment variables
func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("INFRABUILDER_RESOLVER"); v != "" {
		config.Resolver = v
	}
	if v := os.Getenv("INFRABUILDER_CARGO"); v != "" {
		config.CargoPath = v
	}
	if v := os.Getenv("INFRABUILDER_REQUIRE"); v != "" {
		config.RequiredDependencies = SplitList(v)
	}
	if v := os.Getenv("INFRABUILDER_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.ConfigurationError("INFRABUILDER_CONCURRENCY", fmt.Sprintf("%q is not an integer", v))
		}
		config.Concurrency = n
	}
	if v := os.Getenv("INFRABUILDER_STRICT_PATHS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.ConfigurationError("INFRABUILDER_STRICT_PATHS", fmt.Sprintf("%q is not a boolean", v))
		}
		config.StrictPaths = b
	}
	if v := os.Getenv("INFRABUILDER_ROUTER"); v != "" {
		config.Preview.Router = v
	}
	if v := os.Getenv("INFRABUILDER_ADDR"); v != "" {
		config.Preview.Addr = v
	}
	return nil
}

// Validate checks the configuration with go-playground/validator
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.WrapConfigurationError("config", "validate", err)
	}

	var multi *errors.MultipleErrors
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed '%s' check", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s failed '%s=%s' check (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
		}
		errors.AddToMultiple(&multi, errors.ConfigurationError(fe.Field(), msg))
	}
	return multi.ErrOrNil()
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
