// Package main provides the backprop CLI.
package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
)

const version = "v0.1.0-dev"

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	meta := Meta{
		Ui: &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		},
		LogOutput: os.Stderr,
	}

	c := cli.NewCLI("backprop", version)
	c.Args = args
	c.Commands = commands(meta)

	code, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err)
		return 1
	}
	return code
}

func commands(meta Meta) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"eval": func() (cli.Command, error) {
			return &EvalCommand{Meta: meta}, nil
		},
		"grad": func() (cli.Command, error) {
			return &GradCommand{Meta: meta}, nil
		},
		"optimize": func() (cli.Command, error) {
			return &OptimizeCommand{Meta: meta}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{Meta: meta}, nil
		},
	}
}
