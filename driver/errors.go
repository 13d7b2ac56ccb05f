package driver

import (
	"errors"
	"fmt"
)

// ErrInvalidOption is the sentinel every ConfigError matches via Is, the
// same matched-sentinel-plus-typed-struct pattern compiler/gen/errors.go
// uses for its own ConfigError.
var ErrInvalidOption = errors.New("driver: invalid option")

// ConfigError reports a rejected Option, naming the driver option key it
// came from (spec §6's table, e.g. "ddr.implementor") rather than the Go
// function name that rejected it.
type ConfigError struct {
	Key     string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("driver: invalid %s (value: %v): %s", e.Key, e.Value, e.Message)
	}
	return fmt.Sprintf("driver: invalid %s: %s", e.Key, e.Message)
}

// Is reports whether target is ErrInvalidOption.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidOption }

func newConfigError(key string, value any, message string) *ConfigError {
	return &ConfigError{Key: key, Value: value, Message: message}
}
