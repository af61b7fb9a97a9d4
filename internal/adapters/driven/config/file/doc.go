// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under the valvex home
// directory (~/.valvex, or $VALVEX_HOME).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable extraction prompts
//   - SchemaLoader: record schemas from TOML, YAML or JSON files
package file
