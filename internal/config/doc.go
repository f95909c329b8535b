// Package config loads and validates the TOML configuration shared by the
// parley CLI and any embedding editor.
//
// Load resolves the config path (explicit flag, then ~/.config/parley/,
// then a project-local parley.toml), applies defaults, expands ~ in every
// path field, and validates the result. CreateSample writes the embedded
// annotated sample for `parley config init`.
package config
