// Package problem loads optimization problems from HCL files.
//
// A problem file declares variables with initial values, an objective expression over them,
// and optionally the optimizer used to minimize it:
//
//	variable "x" { value = 0.5 }
//	variable "w" { value = [[0.1, 0.2], [0.3, 0.4]] }
//	objective = sum(matmul(w, [[1], [x]]))
//	optimizer "adam" {
//	  learning_rate = 0.05
//	  steps         = 200
//	}
package problem

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/born-ml/backprop/internal/dense"
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/hclexpr"
)

// Config configures problem loading.
type Config struct {
	Logger hclog.Logger
}

// DefaultConfig returns a Config with a null logger.
func DefaultConfig() Config {
	return Config{Logger: hclog.NewNullLogger()}
}

// fileRoot mirrors the top level of a problem file.
type fileRoot struct {
	Variables []*variableBlock `hcl:"variable,block"`
	Objective hcl.Expression   `hcl:"objective"`
	Optimizer *optimizerBlock  `hcl:"optimizer,block"`
}

type variableBlock struct {
	Name  string    `hcl:"name,label"`
	Value cty.Value `hcl:"value"`
}

type optimizerBlock struct {
	Kind         string   `hcl:"kind,label"`
	LearningRate *float64 `hcl:"learning_rate,optional"`
	Momentum     *float64 `hcl:"momentum,optional"`
	Beta1        *float64 `hcl:"beta1,optional"`
	Beta2        *float64 `hcl:"beta2,optional"`
	Epsilon      *float64 `hcl:"epsilon,optional"`
	Steps        *int     `hcl:"steps,optional"`
}

// Problem is a loaded problem file bound to a fresh context.
type Problem struct {
	Filename  string
	Context   *engine.Context[*dense.Array]
	Names     []string // Variable names in declaration order
	Variables map[string]engine.Variable[*dense.Array]
	Objective engine.Expression[*dense.Array]
	Optimizer Optimizer

	logger hclog.Logger
}

// LoadFile reads and decodes the problem file at path.
func LoadFile(path string, cfg Config) (*Problem, error) {
	//nolint:gosec // G304: path comes from the command line
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}
	return Parse(src, path, cfg)
}

// Parse decodes a problem from src. Every validation error in the file is reported.
func Parse(src []byte, filename string, cfg Config) (*Problem, error) {
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse problem file %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode problem file %s: %w", filename, diags)
	}

	p := &Problem{
		Filename:  filename,
		Context:   engine.NewContext[*dense.Array](dense.NewBackend()),
		Variables: make(map[string]engine.Variable[*dense.Array], len(root.Variables)),
		logger:    cfg.Logger.Named("problem"),
	}

	var result *multierror.Error
	scope := make(hclexpr.Scope, len(root.Variables))
	for _, block := range root.Variables {
		if _, dup := p.Variables[block.Name]; dup {
			result = multierror.Append(result, fmt.Errorf("variable %q: declared more than once", block.Name))
			continue
		}
		a, err := hclexpr.ArrayFromValue(block.Value)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("variable %q: %w", block.Name, err))
			continue
		}
		v := p.Context.CreateVariable(a)
		p.Names = append(p.Names, block.Name)
		p.Variables[block.Name] = v
		scope[block.Name] = v
	}

	objective, diags := hclexpr.Compile(root.Objective, scope)
	if diags.HasErrors() {
		result = multierror.Append(result, fmt.Errorf("objective: %w", diags))
	}
	p.Objective = objective

	opt, err := decodeOptimizer(root.Optimizer)
	if err != nil {
		result = multierror.Append(result, err)
	}
	p.Optimizer = opt

	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("invalid problem file %s: %w", filename, err)
	}

	p.logger.Info("problem loaded", "file", filename, "variables", len(p.Names), "optimizer", opt.Kind)
	return p, nil
}

// Variable returns the variable declared as name.
func (p *Problem) Variable(name string) (engine.Variable[*dense.Array], error) {
	v, ok := p.Variables[name]
	if !ok {
		return engine.Variable[*dense.Array]{}, fmt.Errorf("unknown variable %q", name)
	}
	return v, nil
}

// Gradient returns the gradient driver for the objective.
func (p *Problem) Gradient() *engine.Gradient[*dense.Array] {
	return engine.NewGradient(p.Objective, p.Context, engine.Config{Logger: p.logger})
}

// Eval evaluates the objective at the current variable values.
func (p *Problem) Eval() *dense.Array {
	return p.Gradient().Value()
}

// Grad returns the gradient of the objective for each named variable, or for every
// variable when no names are given.
func (p *Problem) Grad(names ...string) (map[string]*dense.Array, error) {
	if len(names) == 0 {
		names = p.Names
	}
	g := p.Gradient()
	grads := make(map[string]*dense.Array, len(names))
	for _, name := range names {
		v, err := p.Variable(name)
		if err != nil {
			return nil, err
		}
		grads[name] = g.Grad(v)
	}
	return grads, nil
}
