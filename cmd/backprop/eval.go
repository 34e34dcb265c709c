package main

// EvalCommand prints the value of a problem's objective.
type EvalCommand struct {
	Meta
}

func (c *EvalCommand) Run(args []string) int {
	return c.guard(func() error {
		p, err := c.load(c.flagSet("eval"), args)
		if err != nil {
			return err
		}
		c.Ui.Output(p.Eval().String())
		return nil
	})
}

func (c *EvalCommand) Synopsis() string {
	return "Evaluate the objective at the initial values"
}

func (c *EvalCommand) Help() string {
	return helpText("Usage: backprop eval [options] PROBLEM", `
Evaluates the objective of the problem file at the variables' declared values
and prints the result.`)
}
