package main

import (
	"fmt"

	"github.com/born-ml/backprop/internal/checkpoint"
)

// OptimizeCommand minimizes a problem's objective with its configured optimizer.
type OptimizeCommand struct {
	Meta
}

func (c *OptimizeCommand) Run(args []string) int {
	var (
		steps    int
		out, in  string
		progress int
	)
	fs := c.flagSet("optimize")
	fs.IntVar(&steps, "steps", 0, "number of steps, overriding the problem file")
	fs.StringVar(&out, "out", "", "checkpoint file to write when done")
	fs.StringVar(&in, "init", "", "checkpoint file to resume from")
	fs.IntVar(&progress, "progress", 0, "print the loss every N steps")

	return c.guard(func() error {
		p, err := c.load(fs, args)
		if err != nil {
			return err
		}
		s, err := p.NewSession()
		if err != nil {
			return err
		}

		if in != "" {
			snap, err := checkpoint.Load(in)
			if err != nil {
				return err
			}
			if err := s.Restore(snap); err != nil {
				return err
			}
		}

		history := s.Run(steps)
		if progress > 0 {
			for i := 0; i < len(history); i += progress {
				c.Ui.Output(fmt.Sprintf("step %d: loss = %g", i, history[i]))
			}
		}

		c.Ui.Output(fmt.Sprintf("loss = %s", p.Eval()))
		for _, name := range p.Names {
			c.Ui.Output(fmt.Sprintf("%s = %s", name, p.Context.Value(p.Variables[name])))
		}

		if out != "" {
			if err := s.Snapshot().Save(out); err != nil {
				return err
			}
			c.Ui.Info(fmt.Sprintf("Saved checkpoint to %s", out))
		}
		return nil
	})
}

func (c *OptimizeCommand) Synopsis() string {
	return "Minimize the objective"
}

func (c *OptimizeCommand) Help() string {
	return helpText("Usage: backprop optimize [options] PROBLEM", `
Minimizes the objective with the optimizer declared in the problem file
(SGD with default settings when none is declared) and prints the final loss
and variable values.

Options:

  -steps=n           Number of steps. Overrides the problem file.
  -init=path         Resume from a checkpoint written by -out.
  -out=path          Write variables and optimizer state when done.
  -progress=n        Print the loss every n steps.`)
}
