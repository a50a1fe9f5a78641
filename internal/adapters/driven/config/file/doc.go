// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the ragcore config directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: editable prompt templates with built-in defaults
package file
