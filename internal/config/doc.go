// Package config defines configuration structures and default values for
// webharvest.
//
// Config is populated once from CLI flags, validated with Validate, and
// passed through the application by dependency injection rather than
// global state. Per-site overrides (cookies, custom headers, depth) are
// loaded from a YAML file, .webharvest, found in the current directory or
// the XDG config directory.
package config
