package numexpr

import (
	"github.com/PradeepThapa/scipy/pkg/vm"
)

// Evaluate compiles src (or reuses the cached program for it) and runs it
// elementwise over the named arrays in bindings. Every input name the
// expression uses must be bound; extra bindings are ignored.
//
//	Evaluate("2*a+3*b", map[string][]float64{"a": {1, 2}, "b": {10, 20}})
//	// -> [32, 64]
func Evaluate(src string, bindings map[string][]float64) ([]float64, error) {
	p, err := compileAndCache(src)
	if err != nil {
		return nil, err
	}

	args := make([][]float64, 0, p.NInputs())
	for _, name := range p.InputNames {
		a, ok := bindings[name]
		if !ok {
			return nil, &UnboundVariableError{Name: name}
		}
		args = append(args, a)
	}
	return vm.Run(p, args...)
}
