// Package config loads, normalizes, and validates storyreel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STORYREEL_REDIS_ADDR. The Config type centralizes every knob the CLI host
// needs: where project directories live, where field values and the job
// ledger are stored, which job backend answers status queries, and how logs
// are written.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
