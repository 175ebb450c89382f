// Package common provides utility functions for key reference replacement.
//
// The {KEY_NAME} syntax lets configuration files reference secrets held in the
// environment instead of storing them inline.
//
// Example:
//
//	Input:  token = "{LISTMONK_API_TOKEN}"
//	Env:    LISTMONK_API_TOKEN=sk-12345
//	Output: token = "sk-12345"
//
// Replacement is case-sensitive. Missing keys are logged as warnings and left
// unchanged.
package common

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"
)

// keyRefPattern matches {key-name} references in strings
var keyRefPattern = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)

// EnvKeyMap returns the process environment as a key map
func EnvKeyMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}
	return env
}

// ReplaceKeyReferences replaces every {key} reference in input with its value
// from kvMap. Unknown references are left unchanged and logged.
func ReplaceKeyReferences(input string, kvMap map[string]string, logger arbor.ILogger) string {
	if input == "" {
		return input
	}

	return keyRefPattern.ReplaceAllStringFunc(input, func(match string) string {
		keyName := match[1 : len(match)-1]
		if value, exists := kvMap[keyName]; exists {
			return value
		}
		logger.Warn().
			Str("reference", match).
			Str("key", keyName).
			Msg("Unresolved key reference - key not set")
		return match
	})
}

// ReplaceInStruct walks a struct pointer and replaces {key} references in all
// string and []string fields, including nested structs. Values are never
// logged since they usually hold credentials.
func ReplaceInStruct(v interface{}, kvMap map[string]string, logger arbor.ILogger) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("ReplaceInStruct requires a pointer, got %T", v)
	}

	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("ReplaceInStruct requires a struct pointer, got pointer to %v", val.Kind())
	}

	replaceInStructValue(val, "", kvMap, logger)
	return nil
}

func replaceInStructValue(val reflect.Value, prefix string, kvMap map[string]string, logger arbor.ILogger) {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		name := prefix + typ.Field(i).Name

		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if replaced := ReplaceKeyReferences(field.String(), kvMap, logger); replaced != field.String() {
				field.SetString(replaced)
				logger.Debug().Str("field", name).Msg("Replaced key reference in config field")
			}

		case reflect.Struct:
			replaceInStructValue(field, name+".", kvMap, logger)

		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				replaceInStructValue(field.Elem(), name+".", kvMap, logger)
			}

		case reflect.Slice:
			if field.Type().Elem().Kind() != reflect.String {
				continue
			}
			for j := 0; j < field.Len(); j++ {
				elem := field.Index(j)
				if replaced := ReplaceKeyReferences(elem.String(), kvMap, logger); replaced != elem.String() {
					elem.SetString(replaced)
					logger.Debug().Str("field", name).Int("index", j).Msg("Replaced key reference in config slice")
				}
			}
		}
	}
}
