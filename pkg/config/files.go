package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// UnmatchedTomlKeysError lists toml keys with no matching struct field.
type UnmatchedTomlKeysError struct {
	Keys []toml.Key
}

func (e *UnmatchedTomlKeysError) Error() string {
	return fmt.Sprintf("There are keys in the config file that do not match any field in the given struct: %v", e.Keys)
}

func envFile(file, env string) (string, bool) {
	ext := filepath.Ext(file)
	name := fmt.Sprintf("%s.%s%s", strings.TrimSuffix(file, ext), env, ext)
	if isFile(name) {
		return name, true
	}
	return "", false
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

// configurationFiles resolves files in load order. The last file given is
// loaded first so earlier files win. Each file is followed by its
// environment variant, and config.example.yml stands in when neither exists.
func (c *Config) configurationFiles(files ...string) []string {
	var found []string
	env := c.GetEnvironment()

	for i := len(files) - 1; i >= 0; i-- {
		file := files[i]
		ok := false

		if isFile(file) {
			found = append(found, file)
			ok = true
		}
		if name, exists := envFile(file, env); exists {
			found = append(found, name)
			ok = true
		}
		if ok {
			continue
		}

		if example, exists := envFile(file, "example"); exists {
			c.Logger.Info("using example configuration", zap.String("file", file), zap.String("example", example))
			found = append(found, example)
		} else {
			c.Logger.Debug("configuration file not found", zap.String("file", file))
		}
	}
	return found
}

func decodeFile(cfg interface{}, file string, strict bool) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	switch filepath.Ext(file) {
	case ".yaml", ".yml":
		return decodeYAML(data, cfg, strict)
	case ".toml":
		return decodeTOML(data, cfg, strict)
	case ".json":
		return decodeJSON(data, cfg, strict)
	}

	var unmatched *UnmatchedTomlKeysError
	if err := decodeTOML(data, cfg, strict); err == nil {
		return nil
	} else if errors.As(err, &unmatched) {
		return err
	}

	if err := decodeJSON(data, cfg, strict); err == nil {
		return nil
	} else if strings.Contains(err.Error(), "json: unknown field") {
		return err
	}

	err = decodeYAML(data, cfg, strict)
	if err == nil {
		return nil
	}
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return err
	}
	return errors.New("failed to decode config")
}

func decodeYAML(data []byte, cfg interface{}, strict bool) error {
	if strict {
		return yaml.UnmarshalStrict(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func decodeTOML(data []byte, cfg interface{}, strict bool) error {
	md, err := toml.Decode(string(data), cfg)
	if err == nil && strict && len(md.Undecoded()) > 0 {
		return &UnmatchedTomlKeysError{Keys: md.Undecoded()}
	}
	return err
}

func decodeJSON(data []byte, cfg interface{}, strict bool) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}
