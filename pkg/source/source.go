package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	yaml "go.yaml.in/yaml/v3"

	gferrors "github.com/vnykmshr/schedgate/pkg/common/errors"
	"github.com/vnykmshr/schedgate/pkg/schedule"
)

// Format is the syntax of a configuration file.
type Format string

const (
	// FormatJSON covers plain JSON and JSON with comments and trailing commas.
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultFileNames are the configuration files FindFile looks for, in order.
var DefaultFileNames = []string{
	"renovate.json",
	"renovate.json5",
	".github/renovate.json",
	".github/renovate.json5",
	".gitlab/renovate.json",
	".gitlab/renovate.json5",
	".renovaterc",
	".renovaterc.json",
	".renovaterc.json5",
	"schedgate.yaml",
	"schedgate.yml",
}

// FormatFromPath picks the format from a file extension. Files without an
// extension, such as ".renovaterc", are JSON.
func FormatFromPath(path string) (Format, error) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	if ext == strings.ToLower(base) {
		ext = ""
	}
	switch ext {
	case ".json", ".jsonc", ".json5", "":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", gferrors.NewValidationError("source", "format", ext, "unsupported file extension").
		WithHint("use .json, .jsonc, .json5, .yaml or .yml")
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*schedule.RepoConfig, error) {
	var (
		raw []byte
		err error
	)
	switch format {
	case FormatJSON:
		raw = jsonc.ToJSON(data)
	case FormatYAML:
		raw, err = yamlToJSON(data)
		if err != nil {
			return nil, gferrors.NewOperationError("source", "parse", err)
		}
	default:
		return nil, gferrors.NewValidationError("source", "format", format, "unsupported format")
	}

	var cfg schedule.RepoConfig
	if len(strings.TrimSpace(string(raw))) == 0 {
		return &cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, gferrors.NewOperationError("source", "parse", err).WithContext(string(format))
	}
	cfg.Schedule = cfg.Schedule.Normalize()
	return &cfg, nil
}

// LoadFile reads and decodes a configuration file, choosing the format from
// its extension.
func LoadFile(path string) (*schedule.RepoConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", gferrors.ErrNotFound, path)
		}
		return nil, gferrors.NewOperationError("source", "load", err).WithContext(path)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FindFile returns the first of DefaultFileNames present under dir.
func FindFile(dir string) (string, error) {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no configuration file in %s", gferrors.ErrNotFound, dir)
}

// yamlToJSON decodes YAML and re-encodes it as JSON so both formats share
// one decoder.
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if v == nil {
		return nil, nil
	}
	j, err := json.Marshal(normalizeYAML(v))
	if err != nil {
		return nil, fmt.Errorf("yaml->json marshal: %w", err)
	}
	return j, nil
}

// normalizeYAML ensures all map keys are strings so the result can be
// JSON-marshaled.
func normalizeYAML(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[k] = normalizeYAML(v)
		}
		return m
	case []any:
		for i := range x {
			x[i] = normalizeYAML(x[i])
		}
		return x
	default:
		return in
	}
}
