// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the user's config directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: YAML overrides for built-in prompt templates
package file
