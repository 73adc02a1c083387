// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML settings at ~/.themescope/config.toml
//   - PromptStore: editable LLM prompt templates at ~/.themescope/prompts/
package file
