package main

import (
	"fmt"
	"strings"
)

// GradCommand prints the gradient of a problem's objective.
type GradCommand struct {
	Meta
}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func (c *GradCommand) Run(args []string) int {
	var names stringList
	fs := c.flagSet("grad")
	fs.Var(&names, "var", "variable to differentiate against (repeatable)")

	return c.guard(func() error {
		p, err := c.load(fs, args)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			names = p.Names
		}
		grads, err := p.Grad(names...)
		if err != nil {
			return err
		}
		for _, name := range names {
			c.Ui.Output(fmt.Sprintf("%s = %s", name, grads[name]))
		}
		return nil
	})
}

func (c *GradCommand) Synopsis() string {
	return "Print the gradient of the objective"
}

func (c *GradCommand) Help() string {
	return helpText("Usage: backprop grad [options] PROBLEM", `
Differentiates the objective against each variable at its declared value and
prints one gradient per line.

Options:

  -var=name    Only print the gradient for this variable. Repeatable.`)
}
