// Package config holds the service configuration and shared HTTP constants.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Admin    AdminConfig    `yaml:"admin"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Files    FilesConfig    `yaml:"files"`
	S3       S3Config       `yaml:"s3"`
}

type SiteConfig struct {
	Name string `yaml:"name" default:"The Archive"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12600"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type AdminConfig struct {
	// SubmitDelay is waited before every editor submission is processed.
	SubmitDelay  time.Duration `yaml:"submit_delay" default:"1s"`
	MarkdownRows int           `yaml:"markdown_rows" default:"20"`
}

// MarshalYAML writes SubmitDelay as a duration string instead of nanoseconds.
func (a AdminConfig) MarshalYAML() (interface{}, error) {
	return struct {
		SubmitDelay  string `yaml:"submit_delay"`
		MarkdownRows int    `yaml:"markdown_rows"`
	}{
		SubmitDelay:  a.SubmitDelay.String(),
		MarkdownRows: a.MarkdownRows,
	}, nil
}

type StorageConfig struct {
	// Backend is one of "sqlite", "fs", "s3" or "memory".
	Backend string `yaml:"backend" default:"sqlite"`
	// Compression applies to the sqlite backend only: "zstd", "gzip" or "none".
	Compression string `yaml:"compression" default:"zstd"`
}

type DatabaseConfig struct {
	// Driver is "sqlite3" (mattn, cgo) or "sqlite" (modernc, pure Go).
	Driver string `yaml:"driver" default:"sqlite3"`
	Path   string `yaml:"path" default:"./database.db"`
}

type FilesConfig struct {
	Dir string `yaml:"dir" default:"./posts"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket" default:""`
	Endpoint string `yaml:"endpoint" default:""`
	Region   string `yaml:"region" default:"auto"`
	Prefix   string `yaml:"prefix" default:"posts/"`
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		return config, nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "fs", "memory":
	case "s3":
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3 storage requires s3.bucket")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Storage.Compression {
	case "zstd", "gzip", "none":
	default:
		return fmt.Errorf("unknown compression %q", c.Storage.Compression)
	}

	if c.Admin.SubmitDelay < 0 {
		return fmt.Errorf("admin.submit_delay must not be negative")
	}
	if c.Admin.MarkdownRows <= 0 {
		return fmt.Errorf("admin.markdown_rows must be positive")
	}

	return nil
}

// Addr is the listen address for http.ListenAndServe.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		if field.Type() == durationType {
			if val, err := time.ParseDuration(defaultValue); err == nil {
				field.SetInt(int64(val))
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
