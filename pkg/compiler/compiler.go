package compiler

import (
	"fmt"

	"kestrel/interpreter-go/pkg/ast"
)

type Options struct {
	// Origin names the source in diagnostics and markers.
	Origin string
}

type Compiler struct {
	opts Options
}

func New(opts Options) *Compiler {
	return &Compiler{opts: opts}
}

// Compile is shorthand for New(opts).Compile(module).
func Compile(module *ast.Module, opts Options) (*Program, error) {
	return New(opts).Compile(module)
}

// Compile resolves and lowers the main chunk and every subroutine. Any
// CompileError aborts compilation; no partial program is returned.
func (c *Compiler) Compile(module *ast.Module) (*Program, error) {
	if module == nil {
		return nil, fmt.Errorf("compiler: missing module")
	}
	program := &Program{
		Subs:   make(map[string]*Unit),
		Origin: c.opts.Origin,
	}
	main, err := c.lowerUnit(program, "main", nil, module.Body, false, module.Span())
	if err != nil {
		return nil, err
	}
	program.Main = main
	return program, nil
}
