// Package compiler turns a parsed recipe into an executable bytecode
// program. It merges imports, registers user-defined functions, resolves
// every call against the signature registry, allocates per-class registers
// and constant pool slots, and emits the typed instruction stream the
// simulation runtime consumes.
package compiler

import (
	stderrors "errors"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"github.com/fathom-lang/fathom/bytecode"
	"github.com/fathom-lang/fathom/errors"
	"github.com/fathom-lang/fathom/recipe"
	"github.com/fathom-lang/fathom/registry"
	"github.com/fathom-lang/fathom/types"
)

var errNoLoader = stderrors.New("no import loader configured")

// Config holds compiler options. All fields are optional: with a nil
// Registry the full builtin catalog is used, with a nil Loader any import
// statement fails, and with a nil Logger nothing is logged.
type Config struct {
	// Filename labels the main unit in diagnostics. Defaults to the
	// recipe's own path.
	Filename string

	// Loader resolves import paths.
	Loader Loader

	// Registry is the builtin catalog to resolve calls against. It is
	// cloned per compilation, so one registry can serve many compilers.
	Registry *registry.Registry

	Logger *zerolog.Logger
}

// Compiler compiles recipes into bytecode programs. A Compiler is not safe
// for concurrent use; each Compile call resets its per-compilation state.
type Compiler struct {
	filename string
	loader   Loader
	catalog  *registry.Registry
	logger   zerolog.Logger

	// Per-compilation state, reset at the start of each Compile.
	id               string
	reg              *registry.Registry
	regs             *RegisterAllocator
	pools            *ConstantPools
	instructions     []bytecode.Instruction
	locs             []errors.SourceLocation
	inlineStack      []string
	defFiles         map[*recipe.FuncDef]string
	iterations       uint64
	hasIterations    bool
	outputName       string
	outputLoc        errors.SourceLocation
	output           types.Operand
	outputStochastic bool
}

// New creates a compiler from the given configuration.
func New(cfg *Config) (*Compiler, error) {
	c := &Compiler{logger: zerolog.Nop()}
	if cfg != nil {
		c.filename = cfg.Filename
		c.loader = cfg.Loader
		c.catalog = cfg.Registry
		if cfg.Logger != nil {
			c.logger = *cfg.Logger
		}
	}
	if c.catalog == nil {
		catalog, err := registry.New()
		if err != nil {
			return nil, err
		}
		c.catalog = catalog
	}
	return c, nil
}

// Compile is a convenience wrapper that creates a compiler and runs it once.
func Compile(root *recipe.Root, cfg *Config) (*bytecode.Program, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return c.Compile(root)
}

// Compile analyzes the recipe and produces a bytecode program. On any error
// no program is returned; there is no partial output.
func (c *Compiler) Compile(root *recipe.Root) (*bytecode.Program, error) {
	c.reset()
	logger := c.logger.With().Str("compilation_id", c.id).Logger()

	u, err := c.merge(root)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Int("steps", len(u.steps)).
		Int("functions", len(u.funcs)).
		Msg("imports merged")

	if err := c.registerFuncs(u); err != nil {
		return nil, err
	}
	if err := c.requireDirectives(); err != nil {
		return nil, err
	}
	for _, s := range u.steps {
		if err := c.analyzeStep(s.file, s.step, c.regs); err != nil {
			return nil, err
		}
	}
	if err := c.resolveOutput(); err != nil {
		return nil, err
	}
	if !c.outputStochastic {
		logger.Debug().
			Str("output", c.outputName).
			Msg("output does not depend on any random draw; every iteration will produce the same value")
	}

	prog, err := c.emit()
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Int("instructions", len(prog.Instructions)).
		Uint64("iterations", prog.Iterations).
		Str("output", c.outputName).
		Msg("compilation complete")
	return prog, nil
}

func (c *Compiler) reset() {
	c.id = uuid.Must(uuid.NewV4()).String()
	c.reg = c.catalog.Clone()
	c.regs = NewRegisterAllocator()
	c.pools = NewConstantPools()
	c.instructions = nil
	c.locs = nil
	c.inlineStack = nil
	c.defFiles = make(map[*recipe.FuncDef]string)
	c.iterations = 0
	c.hasIterations = false
	c.outputName = ""
	c.outputLoc = errors.SourceLocation{}
	c.output = types.Operand{}
	c.outputStochastic = false
}

func (c *Compiler) loc(file string, pos recipe.Position) errors.SourceLocation {
	return errors.SourceLocation{Filename: file, Line: pos.Line, Column: pos.Column}
}

// emitInstruction appends one instruction along with the source location
// that produced it, so capacity errors during final assembly can point back
// at the offending step.
func (c *Compiler) emitInstruction(ins bytecode.Instruction, loc errors.SourceLocation) {
	c.instructions = append(c.instructions, ins)
	c.locs = append(c.locs, loc)
}
