package config

import (
	"errors"
	"os"
	"reflect"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// processDefaults applies `default:"..."` tags to zero fields. Strings are
// taken verbatim; anything else is decoded as yaml.
func processDefaults(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf, field := t.Field(i), v.Field(i)
		if !field.CanSet() {
			continue
		}

		if def := sf.Tag.Get("default"); def != "" && field.IsZero() {
			if field.Kind() == reflect.String {
				field.SetString(def)
			} else if err := yaml.Unmarshal([]byte(def), field.Addr().Interface()); err != nil {
				return err
			}
		}

		if field.Kind() == reflect.Struct {
			if err := processDefaults(field); err != nil {
				return err
			}
		}
	}
	return nil
}

// processEnv overrides fields from PREFIX_PARENT_FIELD variables, or from
// the variable named by an `env` tag, and enforces `required:"true"`.
func (c *Config) processEnv(v reflect.Value, prefixes []string) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf, field := t.Field(i), v.Field(i)
		if !field.CanSet() {
			continue
		}

		path := append(append([]string{}, prefixes...), sf.Name)
		names := []string{strings.Join(path, "_"), strings.ToUpper(strings.Join(path, "_"))}
		if name := sf.Tag.Get("env"); name != "" {
			names = []string{name}
		}

		for _, name := range names {
			value := os.Getenv(name)
			if value == "" {
				continue
			}
			c.Logger.Debug("configuration from env", zap.String("field", sf.Name), zap.String("env", name))
			if err := setFromEnv(field, value); err != nil {
				return err
			}
			break
		}

		if sf.Tag.Get("required") == "true" && field.IsZero() {
			return errors.New(sf.Name + " is required, but blank")
		}

		if field.Kind() == reflect.Struct {
			nested := path
			if sf.Anonymous && sf.Tag.Get("anonymous") == "true" {
				nested = prefixes
			}
			if err := c.processEnv(field, nested); err != nil {
				return err
			}
		}
	}
	return nil
}

func setFromEnv(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.Bool:
		switch strings.ToLower(value) {
		case "0", "f", "false":
			field.SetBool(false)
		default:
			field.SetBool(true)
		}
	case reflect.String:
		field.SetString(value)
	default:
		return yaml.Unmarshal([]byte(value), field.Addr().Interface())
	}
	return nil
}
