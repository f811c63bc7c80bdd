package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
)

func main() {
	commands := map[string]cli.CommandFactory{
		"schema": func() (cli.Command, error) {
			return &SchemaCommand{}, nil
		},
		"load": func() (cli.Command, error) {
			return &LoadCommand{}, nil
		},
	}

	c := &cli.CLI{
		Name:     "tabstore",
		Args:     os.Args[1:],
		Commands: commands,
		HelpFunc: cli.BasicHelpFunc("tabstore"),
	}

	exitCode, err := c.Run()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}

	os.Exit(exitCode)
}
