// Package file loads the model configuration from a YAML file, with
// environment overrides for the values that commonly differ per machine.
package file

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/crmarques/restmodel/config"
	"github.com/crmarques/restmodel/faults"
)

// Load reads, overrides, and validates the configuration. An empty path
// falls back to RESTMODEL_CONFIG_FILE and then to the default location.
func Load(path string) (*config.Config, error) {
	resolvedPath, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFoundError("config file "+resolvedPath+" does not exist")
		}
		return nil, internalError("failed to read config file", err)
	}

	loaded, err := decode(data)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(loaded)

	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}

func decode(data []byte) (*config.Config, error) {
	var loaded config.Config

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&loaded); err != nil {
		return nil, validationError("invalid config yaml", err)
	}
	return &loaded, nil
}

func applyEnvOverrides(loaded *config.Config) {
	if baseURL := os.Getenv(config.BaseURLEnvVar); baseURL != "" {
		loaded.Endpoint.BaseURL = baseURL
	}
	if token := os.Getenv(config.BearerTokenEnvVar); token != "" {
		loaded.Endpoint.Auth = &config.Auth{
			BearerToken: &config.BearerTokenAuth{Token: token},
		}
	}
}

func resolveConfigPath(explicitPath string) (string, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(config.ConfigFileEnvVar)
	}
	if path == "" {
		path = config.DefaultConfigPath
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", internalError("failed to resolve user home directory", err)
		}
		if path == "~" {
			path = homeDir
		} else {
			path = filepath.Join(homeDir, strings.TrimPrefix(path, "~/"))
		}
	}

	cleanPath := filepath.Clean(path)
	if cleanPath == "." {
		return "", validationError("config path is invalid", nil)
	}
	return cleanPath, nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
