package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
)

// DefaultPath is the configuration file looked up when no -config flag is given.
const DefaultPath = "config.json"

// Config holds the connection parameters shared by every tool.
type Config struct {
	NameServer      string `json:"name_server" yaml:"name_server" validate:"required"`
	Database        string `json:"database" yaml:"database" validate:"required"`
	Username        string `json:"username" yaml:"username" validate:"required"`
	Password        string `json:"password" yaml:"password"`
	ControladorODBC string `json:"controlador_odbc" yaml:"controlador_odbc" validate:"required"`
}

// Environment variables that override values read from the source.
const (
	EnvNameServer      = "SQLCRUD_NAME_SERVER"
	EnvDatabase        = "SQLCRUD_DATABASE"
	EnvUsername        = "SQLCRUD_USERNAME"
	EnvPassword        = "SQLCRUD_PASSWORD"
	EnvControladorODBC = "SQLCRUD_CONTROLADOR_ODBC"
)

// Load reads the configuration from source, which is either a JSON/YAML file
// path or a k8s://<namespace>/<secret> reference, applies environment
// overrides (a .env file is loaded first if present) and validates the result.
func Load(ctx context.Context, source string) (*Config, error) {
	if source == "" {
		source = DefaultPath
	}

	var (
		cfg *Config
		err error
	)
	if strings.HasPrefix(source, SecretScheme) {
		cfg, err = loadInClusterSecret(ctx, source)
	} else {
		cfg, err = LoadFile(source)
	}
	if err != nil {
		return nil, err
	}

	// godotenv.Load will not override variables already set in the environment.
	_ = godotenv.Load()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile parses a JSON or YAML configuration file. Unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Config("config.LoadFile", err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, apperrors.Config("config.LoadFile", fmt.Errorf("%s has an invalid format: %w", path, err))
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, apperrors.Config("config.LoadFile", fmt.Errorf("%s has an invalid format: %w", path, err))
		}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		key string
		dst *string
	}{
		{EnvNameServer, &cfg.NameServer},
		{EnvDatabase, &cfg.Database},
		{EnvUsername, &cfg.Username},
		{EnvPassword, &cfg.Password},
		{EnvControladorODBC, &cfg.ControladorODBC},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok {
			*o.dst = v
		}
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that every required field is present.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			missing = append(missing, fe.Field())
		}
		return apperrors.Configf("config.Validate", "missing required fields: %s", strings.Join(missing, ", "))
	}
	return apperrors.Config("config.Validate", err)
}

// Redacted returns the connection parameters safe for display, password omitted.
func (c *Config) Redacted() map[string]string {
	return map[string]string{
		"name_server":      c.NameServer,
		"database":         c.Database,
		"username":         c.Username,
		"controlador_odbc": c.ControladorODBC,
	}
}
