package runtime

// binding is one named slot. declared is the type keyword or class name of a
// typed declaration and stays empty for parameters and plain assignments.
type binding struct {
	value    Value
	declared string
}

// Environment is one scope frame. Frames chain to the scope that was active
// when they were entered, so lookups walk outward through callers.
type Environment struct {
	values map[string]*binding
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]*binding),
		parent: parent,
	}
}

// Define inserts or overwrites an untyped binding in the current frame.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = &binding{value: value}
}

// Declare binds name in the current frame and records its declared type.
func (e *Environment) Declare(name, typeName string, value Value) {
	e.values[name] = &binding{value: value, declared: typeName}
}

// Set updates the nearest binding of name, keeping its declared type, or
// defines an untyped binding in the current frame when none exists.
func (e *Environment) Set(name string, value Value) {
	if b := e.find(name); b != nil {
		b.value = value
		return
	}
	e.Define(name, value)
}

// Lookup retrieves a binding, searching outward through the chain.
func (e *Environment) Lookup(name string) (Value, bool) {
	if b := e.find(name); b != nil {
		return b.value, true
	}
	return nil, false
}

// DeclaredType reports the declared type of the nearest binding of name. It
// is empty for untyped bindings.
func (e *Environment) DeclaredType(name string) (string, bool) {
	if b := e.find(name); b != nil {
		return b.declared, true
	}
	return "", false
}

// Extend opens a child frame.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

func (e *Environment) find(name string) *binding {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.values[name]; ok {
			return b
		}
	}
	return nil
}
