package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "MOODWALL_"
)

// subsections lists the nested sections reachable from environment
// variables, keyed by top-level section.
var subsections = map[string][]string{
	"logging":   {"output", "sampling", "caller", "redaction"},
	"telemetry": {"sampling", "metrics", "logs", "shutdown"},
}

// Load builds the configuration from defaults, an optional YAML file and
// MOODWALL_* environment variables, in increasing precedence.
//
// Environment variables map to keys by section:
//
//	MOODWALL_SERVER_HTTP_PORT        -> server.http_port
//	MOODWALL_EMBEDDINGS_API_KEY      -> embeddings.api_key
//	MOODWALL_LOGGING_OUTPUT_OTEL     -> logging.output.otel
//	MOODWALL_TELEMETRY_SERVICE_NAME  -> telemetry.service_name
//
// A missing file at configPath is not an error; an empty configPath skips
// the file layer. The file must be a regular file no larger than 1MB and
// must not be writable by group or others.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		if err == nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)
	cfg.Logging.Redaction.Fields = splitList(cfg.Logging.Redaction.Fields)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// readConfigFile opens the file once and validates the open descriptor to
// avoid a stat/open race.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return nil, fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(content) > maxConfigFileSize {
		return nil, fmt.Errorf("config file exceeds %d bytes", maxConfigFileSize)
	}
	return content, nil
}

func validateConfigFileProperties(info fs.FileInfo) error {
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", info.Name())
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	if perm := info.Mode().Perm(); perm&0o022 != 0 {
		return fmt.Errorf("config file has insecure permissions %04o: must not be group or world writable", perm)
	}
	return nil
}

// envKey maps MOODWALL_SECTION[_SUB]_FIELD to section[.sub].field.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	for _, sub := range subsections[section] {
		if rest, found := strings.CutPrefix(field, sub+"_"); found {
			return section + "." + sub + "." + rest
		}
	}
	return section + "." + field
}

// splitList expands a single comma separated entry, the shape list values
// take when they come from an environment variable.
func splitList(in []string) []string {
	if len(in) != 1 || !strings.Contains(in[0], ",") {
		return in
	}
	parts := strings.Split(in[0], ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
