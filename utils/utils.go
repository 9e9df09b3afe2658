package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

// IsValidSubcommand checks if the passed subcommand is supported by the parent command
func IsValidSubcommand(available []*cobra.Command, sub string) bool {
	for _, s := range available {
		if sub == s.CalledAs() || sub == s.Name() || ArrayContainsString(s.Aliases, sub) {
			return true
		}
	}
	return false
}

func ArrayContainsString(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

// Unmarshal serializes and deserializes any from into the object.
// Used to turn a decoded `any` (e.g. an adapter section of a config) into a typed struct.
func Unmarshal(from, object any) error {
	reformatted, err := json.Marshal(from)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(reformatted, object); err != nil {
		return fmt.Errorf("failed to unmarshal into %T: %s", object, err)
	}
	return nil
}

// UnmarshalBytes decodes a JSON document into object.
func UnmarshalBytes(data []byte, object any) error {
	if err := json.Unmarshal(data, object); err != nil {
		return fmt.Errorf("failed to unmarshal into %T: %s", object, err)
	}
	return nil
}

// UnmarshalFile reads a JSON or YAML file into dest. With validate set, dest
// is checked against its `validate` struct tags.
func UnmarshalFile(file string, dest any, validate bool) error {
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", file)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read file[%s]: %s", file, err)
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		if data, err = yaml.YAMLToJSON(data); err != nil {
			return fmt.Errorf("failed to convert yaml file[%s]: %s", file, err)
		}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal file[%s]: %s", file, err)
	}

	if validate {
		if err := Validate(dest); err != nil {
			return fmt.Errorf("invalid config in file[%s]: %s", file, err)
		}
	}
	return nil
}

func Ternary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}
