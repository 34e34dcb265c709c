package main

import "fmt"

// VersionCommand prints the CLI version.
type VersionCommand struct {
	Meta
}

func (c *VersionCommand) Run(_ []string) int {
	c.Ui.Output(fmt.Sprintf("backprop %s", version))
	return 0
}

func (c *VersionCommand) Synopsis() string {
	return "Print the version"
}

func (c *VersionCommand) Help() string {
	return "Usage: backprop version"
}
