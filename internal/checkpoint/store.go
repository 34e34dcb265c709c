package checkpoint

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/born-ml/backprop/internal/dense"
	"github.com/born-ml/backprop/internal/engine"
)

const (
	// StatePrefix marks optimizer state entries in a checkpoint.
	StatePrefix = "optim."

	timestepKey = "timestep"
)

// Snapshot is the savable state of a set of named variables and an optimizer.
type Snapshot struct {
	Variables map[string]*dense.Array
	State     map[string]*dense.Array // Optimizer state dict, keys without StatePrefix
	Timestep  int
	Metadata  map[string]string
}

// Capture reads the current values of the named variables from ctx.
func Capture(ctx *engine.Context[*dense.Array], vars map[string]engine.Variable[*dense.Array]) *Snapshot {
	s := &Snapshot{Variables: make(map[string]*dense.Array, len(vars))}
	for name, v := range vars {
		s.Variables[name] = ctx.Value(v)
	}
	return s
}

// Save writes the snapshot to path.
func (s *Snapshot) Save(path string) error {
	arrays := make(map[string]*dense.Array, len(s.Variables)+len(s.State))
	for name, a := range s.Variables {
		if strings.HasPrefix(name, StatePrefix) {
			return fmt.Errorf("checkpoint: variable name %q uses reserved prefix %q", name, StatePrefix)
		}
		arrays[name] = a
	}
	for key, a := range s.State {
		arrays[StatePrefix+key] = a
	}

	metadata := make(map[string]string, len(s.Metadata)+1)
	for k, v := range s.Metadata {
		metadata[k] = v
	}
	if s.Timestep > 0 {
		metadata[timestepKey] = strconv.Itoa(s.Timestep)
	}
	return WriteFile(path, arrays, metadata)
}

// Load reads a snapshot written by Save.
func Load(path string) (*Snapshot, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		Variables: make(map[string]*dense.Array),
		State:     make(map[string]*dense.Array),
		Metadata:  make(map[string]string),
	}
	for name, a := range f.Arrays {
		if key, ok := strings.CutPrefix(name, StatePrefix); ok {
			s.State[key] = a
			continue
		}
		s.Variables[name] = a
	}
	for k, v := range f.Metadata {
		if k == timestepKey {
			if s.Timestep, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("checkpoint: bad timestep %q: %w", v, err)
			}
			continue
		}
		s.Metadata[k] = v
	}
	return s, nil
}

// Restore sets the named variables of ctx to the snapshot's values.
//
// Every entry is checked before any variable is touched. Unknown names and shape
// mismatches are reported together; on error ctx is unchanged.
func (s *Snapshot) Restore(ctx *engine.Context[*dense.Array], vars map[string]engine.Variable[*dense.Array]) error {
	names := make([]string, 0, len(s.Variables))
	for name := range s.Variables {
		names = append(names, name)
	}
	sort.Strings(names)

	var result *multierror.Error
	for _, name := range names {
		v, ok := vars[name]
		if !ok {
			result = multierror.Append(result, &ValidationError{Err: ErrUnknownVariable, Name: name, Details: "not declared"})
			continue
		}
		want, got := ctx.Value(v).Shape(), s.Variables[name].Shape()
		if !want.Equal(got) {
			result = multierror.Append(result, &ValidationError{Err: ErrShapeMismatch, Name: name,
				Details: fmt.Sprintf("variable is %v, checkpoint has %v", want, got)})
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	for _, name := range names {
		ctx.SetVariableValue(vars[name], s.Variables[name])
	}
	return nil
}
