package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type envVarType interface {
	string | int | bool | float64 | time.Duration
}

// GetEnv reads an environment variable and converts it to the type of the default value.
// An invalid value is a configuration error and stops the process.
func GetEnv[T envVarType](name string, defaultValue T) T {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return defaultValue
	}
	value, err := parseEnv[T](raw)
	if err != nil {
		panic(fmt.Sprintf("Environment variable %s is not valid: %s", name, err))
	}
	return value
}

func GetRequiredEnv[T envVarType](name string) T {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		log.Fatalf("%s environment variable is required", name)
	}
	value, err := parseEnv[T](raw)
	if err != nil {
		log.Fatalf("%s environment variable is not valid: %s", name, err)
	}
	return value
}

func parseEnv[T envVarType](raw string) (T, error) {
	var out T
	var parsed any
	var err error

	switch any(out).(type) {
	case string:
		parsed = raw
	case int:
		parsed, err = strconv.Atoi(raw)
	case bool:
		parsed, err = strconv.ParseBool(raw)
	case float64:
		parsed, err = strconv.ParseFloat(raw, 64)
	case time.Duration:
		parsed, err = time.ParseDuration(raw)
	}
	if err != nil {
		return out, err
	}
	return parsed.(T), nil
}
