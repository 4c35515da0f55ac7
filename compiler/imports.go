package compiler

import (
	"os"
	"path/filepath"

	"github.com/fathom-lang/fathom/errors"
	"github.com/fathom-lang/fathom/recipe"
)

// Loader resolves an import path to a parsed script. Implementations decide
// what a path means: a file on disk, an entry in an archive, a test fixture.
type Loader interface {
	Load(path string) (*recipe.Root, error)
}

// FileLoader loads imports from JSON recipe files relative to Dir.
type FileLoader struct {
	Dir string
}

func (l FileLoader) Load(path string) (*recipe.Root, error) {
	data, err := os.ReadFile(filepath.Join(l.Dir, path))
	if err != nil {
		return nil, err
	}
	root, err := recipe.FromJSON(data)
	if err != nil {
		return nil, err
	}
	if root.Path == "" {
		root.Path = path
	}
	return root, nil
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(path string) (*recipe.Root, error)

func (f LoaderFunc) Load(path string) (*recipe.Root, error) { return f(path) }

// sourcedStep is a step paired with the file it came from, so diagnostics
// for spliced module steps point at the module, not the importer.
type sourcedStep struct {
	step recipe.Step
	file string
}

type sourcedFunc struct {
	def  *recipe.FuncDef
	file string
}

// unit is the flattened compilation unit after import merging: every
// function definition from every reachable file, plus the steps of the main
// file and of module-marked imports, in post-order so a module's steps run
// before the steps that depend on them.
type unit struct {
	steps []sourcedStep
	funcs []sourcedFunc
}

// merge walks the import graph depth-first from the main file. Each file is
// loaded and merged exactly once no matter how many import statements reach
// it; an import that is already on the in-progress stack is a cycle.
func (c *Compiler) merge(root *recipe.Root) (*unit, error) {
	u := &unit{}
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var chain []string

	mainFile := c.filename
	if mainFile == "" {
		mainFile = root.Path
	}

	var walk func(r *recipe.Root, file string, isMain bool) error
	walk = func(r *recipe.Root, file string, isMain bool) error {
		onStack[file] = true
		chain = append(chain, file)
		defer func() {
			delete(onStack, file)
			chain = chain[:len(chain)-1]
		}()

		if err := c.validateDirectives(file, r, isMain); err != nil {
			return err
		}
		for _, imp := range r.Imports {
			impLoc := c.loc(file, imp.Position)
			if onStack[imp.Path] {
				cycle := append(append([]string{}, chain...), imp.Path)
				return errors.NewCircularImport(cycle, impLoc)
			}
			if visited[imp.Path] {
				continue
			}
			if c.loader == nil {
				return errors.NewImportFailed(imp.Path, errNoLoader, impLoc)
			}
			child, err := c.loader.Load(imp.Path)
			if err != nil {
				return errors.NewImportFailed(imp.Path, err, impLoc)
			}
			visited[imp.Path] = true
			if err := walk(child, imp.Path, false); err != nil {
				return err
			}
		}
		for i := range r.Funcs {
			u.funcs = append(u.funcs, sourcedFunc{def: &r.Funcs[i], file: file})
		}
		// Function definitions always merge; steps only travel when the
		// file is the main file or declares itself a module.
		if isMain || r.IsModule() {
			for _, s := range r.Steps {
				u.steps = append(u.steps, sourcedStep{step: s, file: file})
			}
		}
		return nil
	}

	if err := walk(root, mainFile, true); err != nil {
		return nil, err
	}
	return u, nil
}

// registerFuncs adds every merged definition to the compilation's registry.
// The same name defined in two different files is a conflict even when the
// signatures would not overlap, since a reader cannot tell which one a call
// site means.
func (c *Compiler) registerFuncs(u *unit) error {
	origin := make(map[string]string)
	for _, sf := range u.funcs {
		floc := c.loc(sf.file, sf.def.Position)
		if prev, ok := origin[sf.def.Name]; ok && prev != sf.file {
			return errors.NewDuplicateDefinition(sf.def.Name, prev, floc)
		}
		origin[sf.def.Name] = sf.file
		c.defFiles[sf.def] = sf.file
		if err := c.reg.RegisterFuncDef(sf.def, c.defStochastic(sf.def)); err != nil {
			if ce, ok := err.(*errors.CompileError); ok && ce.Location.IsZero() {
				ce.Location = floc
			}
			return err
		}
	}
	return nil
}

// defStochastic reports whether any call reachable in the definition's body
// names a stochastic signature. This is a conservative name-level check used
// for the registry entry; the exact taint of each call site is computed from
// the instructions produced when the body is inlined.
func (c *Compiler) defStochastic(def *recipe.FuncDef) bool {
	stochName := func(name string) bool {
		for _, sig := range c.reg.Signatures(name) {
			if sig.Stochastic {
				return true
			}
		}
		return false
	}
	var hasStoch func(e recipe.Expr) bool
	hasStoch = func(e recipe.Expr) bool {
		call, ok := e.(*recipe.Call)
		if !ok {
			return false
		}
		if stochName(call.Func) {
			return true
		}
		for _, a := range call.Args {
			if hasStoch(a) {
				return true
			}
		}
		return false
	}
	for _, step := range def.Body {
		switch s := step.(type) {
		case *recipe.Let:
			if s.Value != nil && hasStoch(s.Value) {
				return true
			}
		case *recipe.Assign:
			if hasStoch(s.Value) {
				return true
			}
		}
	}
	for _, e := range def.Return {
		if hasStoch(e) {
			return true
		}
	}
	return false
}
