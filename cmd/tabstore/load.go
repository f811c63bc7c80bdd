package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hndinh/tabstore/internal"
	"github.com/hndinh/tabstore/internal/engine"
	"github.com/hndinh/tabstore/internal/logging"
)

type LoadCommand struct{}

func (c *LoadCommand) Help() string {
	helpText := `
Usage: tabstore load [options]

  Bulk-loads rows from a delimited text file into a table. The file's
  first line must name the table's columns in schema order.

Options:

	-config="config.yaml"	Configuration file
	-table=""	Table name
	-file=""	Delimited input file
	-delim="tab"	Field delimiter (single character, or "tab")
`
	return strings.TrimSpace(helpText)
}

func (c *LoadCommand) Synopsis() string {
	return "Bulk-load rows from a delimited file"
}

func (c *LoadCommand) Run(args []string) int {
	var configPath, tableName, filePath, delim string

	cmdFlags := flag.NewFlagSet("load", flag.ExitOnError)
	cmdFlags.StringVar(&configPath, "config", "config.yaml", "config file")
	cmdFlags.StringVar(&tableName, "table", "", "table name")
	cmdFlags.StringVar(&filePath, "file", "", "input file")
	cmdFlags.StringVar(&delim, "delim", "tab", "field delimiter")
	if err := cmdFlags.Parse(args); err != nil {
		return 1
	}
	if tableName == "" || filePath == "" {
		_, _ = fmt.Fprintln(os.Stderr, "both -table and -file are required")
		return 1
	}

	delimiter := '\t'
	if delim != "tab" {
		runes := []rune(delim)
		if len(runes) != 1 {
			_, _ = fmt.Fprintf(os.Stderr, "delimiter must be a single character, got %q\n", delim)
			return 1
		}
		delimiter = runes[0]
	}

	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %s\n", err.Error())
		return 1
	}

	logger := logging.NewLogrusSink(cfg.Log.Level)
	db := engine.NewDatabase(cfg.Storage.Workdir, logger)
	t, err := db.OpenTable(tableName)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error opening table: %s\n", err.Error())
		return 1
	}

	results, err := t.LoadFromFile(filePath, delimiter)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading file: %s\n", err.Error())
		return 1
	}

	fmt.Printf("loaded %d rows into %s\n", len(results), tableName)
	return 0
}
