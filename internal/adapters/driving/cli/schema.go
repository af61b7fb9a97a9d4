package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	schemaPath       string
	schemaOutput     string
	schemaFormat     string
	schemaJSONSchema bool
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the record schema",
	Long: `Shows the record schema used for extraction: the built-in valve schema,
or the file set with 'valvex settings set schema.path' or --schema.

With --output the schema is written as a file that can be edited and loaded
again with --schema. The format follows the file extension or --format.`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVar(&schemaPath, "schema", "", "schema file to load instead of the configured one")
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "write the schema to a file")
	schemaCmd.Flags().StringVarP(&schemaFormat, "format", "f", "", "schema file format: toml, yaml or json")
	schemaCmd.Flags().BoolVar(&schemaJSONSchema, "json-schema", false, "print the JSON Schema sent to the model")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, _ []string) error {
	if schemaService == nil || settingsService == nil {
		return errors.New("schema service not configured")
	}

	path := schemaPath
	if !cmd.Flags().Changed("schema") {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		path = settings.SchemaPath
	}

	schema, err := schemaService.Load(path)
	if err != nil {
		return err
	}

	if schemaOutput != "" || schemaFormat != "" {
		ext := filepath.Ext(schemaOutput)
		if schemaFormat != "" {
			ext = "." + strings.TrimPrefix(strings.ToLower(schemaFormat), ".")
		}
		data, err := schemaService.Render(schema, ext)
		if err != nil {
			return err
		}
		if schemaOutput == "" {
			cmd.Print(string(data))
			return nil
		}
		if err := os.WriteFile(schemaOutput, data, 0o644); err != nil {
			return fmt.Errorf("failed to write schema: %w", err)
		}
		cmd.Printf("Schema written to %s\n", schemaOutput)
		return nil
	}

	if schemaJSONSchema {
		hint, err := schemaService.Hint(schema)
		if err != nil {
			return err
		}
		cmd.Println(string(hint))
		return nil
	}

	source := path
	if source == "" {
		source = "built-in"
	}
	cmd.Printf("Schema: %s (%s)\n", schema.Name, source)
	cmd.Printf("Collection: %s\n", schema.Collection)
	cmd.Printf("Identifier: %s\n", schema.Identifier)
	cmd.Println()
	cmd.Println("Fields:")
	for _, line := range strings.Split(strings.TrimRight(schema.Describe(), "\n"), "\n") {
		cmd.Printf("  %s\n", line)
	}
	return nil
}
