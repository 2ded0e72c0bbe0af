// Package config defines the declarative configuration surface: the remote
// endpoint, the response cache backend, and the resource classes the model
// layer exposes. Providers under internal/providers consume these types.
package config

import (
	"strings"

	"github.com/crmarques/restmodel/faults"
	"github.com/crmarques/restmodel/resource"
)

const (
	ConfigFileEnvVar  = "RESTMODEL_CONFIG_FILE"
	DefaultConfigPath = "~/.restmodel/config.yaml"

	BaseURLEnvVar     = "RESTMODEL_BASE_URL"
	BearerTokenEnvVar = "RESTMODEL_BEARER_TOKEN"

	CacheStoreMemory = "memory"
	CacheStoreFS     = "filesystem"
	CacheStoreSQLite = "sqlite"
)

type Config struct {
	Endpoint  Endpoint         `yaml:"endpoint"`
	Cache     *Cache           `yaml:"cache,omitempty"`
	Resources []ResourceConfig `yaml:"resources"`
}

type Endpoint struct {
	BaseURL        string            `yaml:"base-url"`
	TimeoutSeconds int               `yaml:"timeout-seconds,omitempty"`
	DefaultHeaders map[string]string `yaml:"default-headers,omitempty"`
	RatePerSecond  float64           `yaml:"rate-per-second,omitempty"`
	Auth           *Auth             `yaml:"auth,omitempty"`
	TLS            *TLS              `yaml:"tls,omitempty"`
}

type Auth struct {
	BasicAuth    *BasicAuth       `yaml:"basic-auth,omitempty"`
	BearerToken  *BearerTokenAuth `yaml:"bearer-token,omitempty"`
	CustomHeader *HeaderTokenAuth `yaml:"custom-header,omitempty"`
}

type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type BearerTokenAuth struct {
	Token string `yaml:"token"`
}

type HeaderTokenAuth struct {
	Header string `yaml:"header"`
	Token  string `yaml:"token"`
}

type TLS struct {
	CACertFile         string `yaml:"ca-cert-file,omitempty"`
	ClientCertFile     string `yaml:"client-cert-file,omitempty"`
	ClientKeyFile      string `yaml:"client-key-file,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure-skip-verify,omitempty"`
}

type Cache struct {
	Store   string `yaml:"store"`
	BaseDir string `yaml:"base-dir,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// ResourceConfig declares one resource class. Attrs use the "[]" suffix to
// mark sequence-valued attributes, matching resource.ParseAttrs.
type ResourceConfig struct {
	TypeKey      string   `yaml:"type"`
	Base         string   `yaml:"base"`
	Namespace    string   `yaml:"namespace,omitempty"`
	PrimaryKeys  []string `yaml:"primary-keys,omitempty"`
	Attrs        []string `yaml:"attrs"`
	UpdateMethod string   `yaml:"update-method,omitempty"`
	Filters      []string `yaml:"filters,omitempty"`
}

func (r ResourceConfig) Descriptor() *resource.Descriptor {
	primaryKeys := r.PrimaryKeys
	if len(primaryKeys) == 0 {
		primaryKeys = []string{"id"}
	}
	return &resource.Descriptor{
		TypeKey:      r.TypeKey,
		Base:         r.Base,
		Namespace:    r.Namespace,
		PrimaryKeys:  primaryKeys,
		Attrs:        resource.ParseAttrs(r.Attrs...),
		UpdateMethod: r.UpdateMethod,
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint.BaseURL) == "" {
		return validationError("endpoint.base-url is required", nil)
	}
	if c.Endpoint.Auth != nil {
		if err := c.Endpoint.Auth.validate(); err != nil {
			return err
		}
	}
	if c.Cache != nil {
		if err := c.Cache.validate(); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(c.Resources))
	for _, resourceConfig := range c.Resources {
		if err := resourceConfig.Descriptor().Validate(); err != nil {
			return err
		}
		if seen[resourceConfig.TypeKey] {
			return validationError("resources declare duplicate type "+resourceConfig.TypeKey, nil)
		}
		seen[resourceConfig.TypeKey] = true
	}
	return nil
}

func (a *Auth) validate() error {
	setCount := 0
	if a.BasicAuth != nil {
		setCount++
	}
	if a.BearerToken != nil {
		setCount++
	}
	if a.CustomHeader != nil {
		setCount++
	}
	if setCount != 1 {
		return validationError("endpoint.auth must define exactly one auth mode", nil)
	}

	switch {
	case a.BasicAuth != nil:
		if a.BasicAuth.Username == "" || a.BasicAuth.Password == "" {
			return validationError("endpoint.auth.basic-auth requires username and password", nil)
		}
	case a.BearerToken != nil:
		if a.BearerToken.Token == "" {
			return validationError("endpoint.auth.bearer-token.token is required", nil)
		}
	case a.CustomHeader != nil:
		if a.CustomHeader.Header == "" || a.CustomHeader.Token == "" {
			return validationError("endpoint.auth.custom-header requires header and token", nil)
		}
	}
	return nil
}

func (c *Cache) validate() error {
	switch c.Store {
	case CacheStoreMemory:
		return nil
	case CacheStoreFS:
		if strings.TrimSpace(c.BaseDir) == "" {
			return validationError("cache.base-dir is required for the filesystem store", nil)
		}
		return nil
	case CacheStoreSQLite:
		if strings.TrimSpace(c.Path) == "" {
			return validationError("cache.path is required for the sqlite store", nil)
		}
		return nil
	default:
		return validationError("cache.store must be one of memory, filesystem, sqlite", nil)
	}
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}
