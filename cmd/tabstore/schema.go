package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hndinh/tabstore/internal"
	"github.com/hndinh/tabstore/internal/engine"
	"github.com/hndinh/tabstore/internal/logging"
	"github.com/hndinh/tabstore/internal/record"
)

type SchemaCommand struct{}

func (c *SchemaCommand) Help() string {
	helpText := `
Usage: tabstore schema [options]

  Creates a table and persists its column schema.

Options:

	-config="config.yaml"	Configuration file
	-table=""	Table name
	-columns=""	Comma-separated name:TYPE pairs, e.g. "id:INT,name:TEXT,joined:DATE"
`
	return strings.TrimSpace(helpText)
}

func (c *SchemaCommand) Synopsis() string {
	return "Create a table schema"
}

func (c *SchemaCommand) Run(args []string) int {
	var configPath, tableName, columnSpec string

	cmdFlags := flag.NewFlagSet("schema", flag.ExitOnError)
	cmdFlags.StringVar(&configPath, "config", "config.yaml", "config file")
	cmdFlags.StringVar(&tableName, "table", "", "table name")
	cmdFlags.StringVar(&columnSpec, "columns", "", "column list")
	if err := cmdFlags.Parse(args); err != nil {
		return 1
	}
	if tableName == "" || columnSpec == "" {
		_, _ = fmt.Fprintln(os.Stderr, "both -table and -columns are required")
		return 1
	}

	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %s\n", err.Error())
		return 1
	}

	schema, err := parseColumns(columnSpec)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return 1
	}

	logger := logging.NewLogrusSink(cfg.Log.Level)
	db := engine.NewDatabase(cfg.Storage.Workdir, logger)
	if _, err := db.CreateTable(tableName, schema); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating table: %s\n", err.Error())
		return 1
	}

	fmt.Printf("created table %s with %d columns\n", tableName, schema.NumCols())
	return 0
}

func parseColumns(spec string) (record.Schema, error) {
	var cols []record.Column
	for _, part := range strings.Split(spec, ",") {
		name, typeName, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found || name == "" {
			return record.Schema{}, fmt.Errorf("malformed column %q, want name:TYPE", part)
		}
		typ, ok := record.ParseColumnType(typeName)
		if !ok {
			return record.Schema{}, fmt.Errorf("unknown column type %q", typeName)
		}
		cols = append(cols, record.Column{Name: name, Type: typ})
	}
	return record.Schema{Cols: cols}, nil
}
