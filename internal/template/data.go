// Package template ties a template file to the variables it is rendered
// with.
//
// A Controller is the handle callers work with: it owns a Data record (an
// identifier plus a variables.Store), references the File it renders, and
// forwards rendering to a stateless Service. Failures raised by the File
// reach the caller unchanged.
package template

import "github.com/conneroisu/porter/internal/variables"

// Data is the record behind a template handle
type Data struct {
	id        string
	variables *variables.Store
}

// NewData creates a record with the given identifier and no variables
func NewData(id string) *Data {
	return &Data{
		id:        id,
		variables: variables.NewStore(),
	}
}

// ID returns the template identifier
func (d *Data) ID() string {
	return d.id
}

// SetID replaces the template identifier
func (d *Data) SetID(id string) {
	d.id = id
}

// Variable returns a stored variable, or nil if it was never set
func (d *Data) Variable(key string) any {
	return d.variables.Get(key)
}

// Variables returns every stored variable
func (d *Data) Variables() map[string]any {
	return d.variables.GetAll()
}

// SetVariable sets a single variable
func (d *Data) SetVariable(key string, value any) {
	d.variables.Set(key, value)
}

// SetVariables merges the given variables into the record
func (d *Data) SetVariables(values map[string]any) {
	d.variables.SetAll(values)
}
