// Package file provides filesystem-backed configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML configuration with environment overrides for credentials
//   - PromptStore: editable answer templates with hot reload
//   - Site profiles: YAML loader for the target shop description
package file
