package config

import "errors"

// Sentinel kinds wrapped around loader and validation failures.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
