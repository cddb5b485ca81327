package module

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var (
	// ErrUnknownParam is returned when setting or reading a parameter the module does not declare
	ErrUnknownParam = errors.New("unknown parameter")
	// ErrUnknownModule is returned by Registry.Get for unregistered names
	ErrUnknownModule = errors.New("unknown module")
)

// Type names the value kind of a parameter
type Type string

const (
	TypeString   Type = "string"
	TypeFloat    Type = "float"
	TypeInt      Type = "int"
	TypeBool     Type = "bool"
	TypeDuration Type = "duration"
)

// Param declares one named module parameter
type Param struct {
	Name        string
	Type        Type
	Description string
	// Default is used when the parameter is not set. A parameter with no
	// Default and no DefaultFunc must be set before the module runs.
	Default any
	// DefaultFunc computes the default at read time, for values that depend
	// on host state such as the default interface.
	DefaultFunc func() (any, error)
	// DefaultText describes a DefaultFunc default in Info output
	DefaultText string
	// Parse converts user text for custom types; built-in types use cast
	Parse func(string) (any, error)
}

func (p Param) required() bool {
	return p.Default == nil && p.DefaultFunc == nil
}

func (p Param) coerce(value string) (any, error) {
	if p.Parse != nil {
		return p.Parse(value)
	}
	switch p.Type {
	case TypeFloat:
		return cast.ToFloat64E(value)
	case TypeInt:
		return cast.ToIntE(value)
	case TypeBool:
		return cast.ToBoolE(value)
	case TypeDuration:
		return cast.ToDurationE(value)
	case TypeString, "":
		return value, nil
	}
	return nil, fmt.Errorf("no parser for type %s", p.Type)
}

// MissingParamError lists required parameters that were not set
type MissingParamError struct {
	Names []string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("one or more required options is not set: %s", strings.Join(e.Names, ", "))
}

// CoercionError reports text that could not be converted to a parameter's type
type CoercionError struct {
	Name  string
	Type  Type
	Value string
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("value %q cannot be converted to type %s for %s: %v", e.Value, e.Type, e.Name, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// ParamSet holds the declared parameters of a module and the values bound
// to them. It is not safe for concurrent use.
type ParamSet struct {
	params []Param
	index  map[string]int
	values map[string]any
}

// NewParamSet declares params in display order
func NewParamSet(params ...Param) *ParamSet {
	ps := &ParamSet{
		params: params,
		index:  make(map[string]int, len(params)),
		values: make(map[string]any),
	}
	for i, p := range params {
		ps.index[p.Name] = i
	}
	return ps
}

// Params returns the declarations in display order
func (ps *ParamSet) Params() []Param {
	return ps.params
}

func (ps *ParamSet) lookup(name string) (Param, error) {
	i, ok := ps.index[name]
	if !ok {
		return Param{}, fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return ps.params[i], nil
}

// Set converts value to the parameter's type and binds it
func (ps *ParamSet) Set(name, value string) error {
	p, err := ps.lookup(name)
	if err != nil {
		return err
	}
	v, err := p.coerce(value)
	if err != nil {
		return &CoercionError{Name: name, Type: p.Type, Value: value, Err: err}
	}
	ps.values[name] = v
	return nil
}

// Clear unbinds a parameter so its default applies again
func (ps *ParamSet) Clear(name string) error {
	if _, err := ps.lookup(name); err != nil {
		return err
	}
	delete(ps.values, name)
	return nil
}

// IsSet reports whether a value was bound with Set
func (ps *ParamSet) IsSet(name string) bool {
	_, ok := ps.values[name]
	return ok
}

// Value returns the bound value or else the default
func (ps *ParamSet) Value(name string) (any, error) {
	p, err := ps.lookup(name)
	if err != nil {
		return nil, err
	}
	if v, ok := ps.values[name]; ok {
		return v, nil
	}
	switch {
	case p.DefaultFunc != nil:
		return p.DefaultFunc()
	case p.Default != nil:
		return p.Default, nil
	}
	return nil, &MissingParamError{Names: []string{name}}
}

// String returns a parameter value as a string
func (ps *ParamSet) String(name string) (string, error) {
	v, err := ps.Value(name)
	if err != nil {
		return "", err
	}
	return cast.ToStringE(v)
}

// Float64 returns a parameter value as a float64
func (ps *ParamSet) Float64(name string) (float64, error) {
	v, err := ps.Value(name)
	if err != nil {
		return 0, err
	}
	return cast.ToFloat64E(v)
}

// Int returns a parameter value as an int
func (ps *ParamSet) Int(name string) (int, error) {
	v, err := ps.Value(name)
	if err != nil {
		return 0, err
	}
	return cast.ToIntE(v)
}

// Bool returns a parameter value as a bool
func (ps *ParamSet) Bool(name string) (bool, error) {
	v, err := ps.Value(name)
	if err != nil {
		return false, err
	}
	return cast.ToBoolE(v)
}

// Seconds reads a float parameter holding seconds as a duration
func (ps *ParamSet) Seconds(name string) (time.Duration, error) {
	secs, err := ps.Float64(name)
	if err != nil {
		return 0, err
	}
	if secs < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// Missing lists required parameters that have no bound value
func (ps *ParamSet) Missing() []string {
	var missing []string
	for _, p := range ps.params {
		if !p.required() {
			continue
		}
		if _, ok := ps.values[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// Validate returns a MissingParamError if a required parameter is unset
func (ps *ParamSet) Validate() error {
	if missing := ps.Missing(); len(missing) > 0 {
		return &MissingParamError{Names: missing}
	}
	return nil
}

// Info renders the module help text with the current value or default of
// every parameter.
func (ps *ParamSet) Info(name, doc string) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString("\n")
	if doc != "" {
		sb.WriteString(doc)
		sb.WriteString("\n")
	}
	sb.WriteString("Options:\n")
	for _, p := range ps.params {
		fmt.Fprintf(&sb, "%s (%s): ", p.Name, p.Type)
		switch v, ok := ps.values[p.Name]; {
		case ok:
			fmt.Fprint(&sb, v)
		case p.DefaultText != "":
			sb.WriteString(p.DefaultText)
		case p.Default != nil:
			fmt.Fprint(&sb, p.Default)
		default:
			sb.WriteString("<required>")
		}
		if p.Description != "" {
			sb.WriteString("  ")
			sb.WriteString(p.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
