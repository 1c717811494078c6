package interpreter

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/driver"
	"tinylang/interpreter-go/pkg/runtime"
)

const (
	// DefaultMaxCallDepth bounds nested function and method calls.
	DefaultMaxCallDepth = 10000
	// DefaultMaxArrayLength bounds the element count of any one array.
	DefaultMaxArrayLength = 1 << 24
)

// Options configures an interpreter. Zero values select os.Stdout, os.Stdin,
// the working directory, DefaultMaxCallDepth and DefaultMaxArrayLength.
type Options struct {
	Stdout         io.Writer
	Stdin          io.Reader
	BaseDir        string
	MaxCallDepth   int
	MaxArrayLength int
}

// Interpreter executes tl statements. One interpreter holds the state of a
// single run: the global scope and the function, class, array and object
// registries.
type Interpreter struct {
	stdout       io.Writer
	stdin        *bufio.Reader
	baseDir      string
	maxCallDepth int
	maxArrayLen  int64
	depth        int

	global    *runtime.Environment
	functions map[string]*runtime.FunctionValue
	classes   map[string]*runtime.ClassValue
	arrays    map[string]*runtime.ArrayValue
	objects   map[string]*runtime.ObjectValue
}

// New returns an interpreter with an empty global environment.
func New(opts Options) *Interpreter {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	depth := opts.MaxCallDepth
	if depth <= 0 {
		depth = DefaultMaxCallDepth
	}
	arrayLen := opts.MaxArrayLength
	if arrayLen <= 0 {
		arrayLen = DefaultMaxArrayLength
	}
	return &Interpreter{
		stdout:       stdout,
		stdin:        bufio.NewReader(stdin),
		baseDir:      opts.BaseDir,
		maxCallDepth: depth,
		maxArrayLen:  int64(arrayLen),
		global:       runtime.NewEnvironment(nil),
		functions:    make(map[string]*runtime.FunctionValue),
		classes:      make(map[string]*runtime.ClassValue),
		arrays:       make(map[string]*runtime.ArrayValue),
		objects:      make(map[string]*runtime.ObjectValue),
	}
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Array returns a registered array by name.
func (i *Interpreter) Array(name string) (*runtime.ArrayValue, bool) {
	arr, ok := i.arrays[name]
	return arr, ok
}

// Object returns a registered object instance by name.
func (i *Interpreter) Object(name string) (*runtime.ObjectValue, bool) {
	obj, ok := i.objects[name]
	return obj, ok
}

// Class returns a registered class by name.
func (i *Interpreter) Class(name string) (*runtime.ClassValue, bool) {
	class, ok := i.classes[name]
	return class, ok
}

// EvaluateProgram runs a loaded program, applying its settings first.
func (i *Interpreter) EvaluateProgram(program *driver.Program) error {
	if program == nil {
		return newRuntimeError(UnsupportedConstruct, "nil program")
	}
	if program.Settings.MaxCallDepth > 0 {
		i.maxCallDepth = program.Settings.MaxCallDepth
	}
	if i.baseDir == "" && program.Entry != "" {
		i.baseDir = filepath.Dir(program.Entry)
	}
	return i.Run(program.Statements)
}

// Run executes a top-level statement list in three passes: class and function
// definitions are registered, then argument-less object declarations are
// instantiated, then every remaining statement runs in source order.
func (i *Interpreter) Run(stmts []ast.Statement) error {
	handled := make([]bool, len(stmts))
	for idx, stmt := range stmts {
		switch n := stmt.(type) {
		case *ast.ClassDefinition:
			if err := i.defineClass(n); err != nil {
				return located(err, n)
			}
			handled[idx] = true
		case *ast.FunctionDefinition:
			i.defineFunction(n)
			handled[idx] = true
		}
	}
	for idx, stmt := range stmts {
		if n, ok := stmt.(*ast.ObjectInstantiation); ok && len(n.Arguments) == 0 {
			if err := i.evaluateObjectInstantiation(n, i.global); err != nil {
				return located(err, n)
			}
			handled[idx] = true
		}
	}
	for idx, stmt := range stmts {
		if handled[idx] {
			continue
		}
		if err := i.evaluateStatement(stmt, i.global); err != nil {
			if _, ok := err.(returnSignal); ok {
				return located(newRuntimeError(UnsupportedConstruct, "return outside function"), stmt)
			}
			return err
		}
	}
	return nil
}

// Evaluate computes a single expression in the global environment.
func (i *Interpreter) Evaluate(expr ast.Expression) (runtime.Value, error) {
	val, err := i.evaluateExpression(expr, i.global)
	if _, ok := err.(returnSignal); ok {
		return nil, newRuntimeError(UnsupportedConstruct, "return outside function")
	}
	return val, err
}

func (i *Interpreter) defineFunction(def *ast.FunctionDefinition) {
	i.functions[def.Name] = &runtime.FunctionValue{Declaration: def}
}

func (i *Interpreter) defineClass(def *ast.ClassDefinition) error {
	class := &runtime.ClassValue{Node: def}
	if def.Base != "" {
		base, ok := i.classes[def.Base]
		if !ok {
			return newRuntimeError(UndefinedName, "undefined base class '%s'", def.Base)
		}
		class.Base = base
	}
	i.classes[def.Name] = class
	return nil
}

type returnSignal struct {
	value runtime.Value
}

func (r returnSignal) Error() string {
	return "return"
}
