package template

// Controller is the handle for one template file. It is always rendered
// with the record and file it was built with.
type Controller struct {
	data    *Data
	file    File
	service *Service
}

// NewController assembles a handle from its parts
func NewController(data *Data, file File, service *Service) *Controller {
	return &Controller{
		data:    data,
		file:    file,
		service: service,
	}
}

// ID returns the identifier of the underlying record
func (c *Controller) ID() string {
	return c.data.ID()
}

// RenderedTemplate renders the template with the stored variables
func (c *Controller) RenderedTemplate() (string, error) {
	return c.service.RenderedTemplate(c.data, c.file)
}

// RawTemplate returns the template source without parsing it
func (c *Controller) RawTemplate() (string, error) {
	return c.service.RawTemplate(c.file)
}

// Variable returns a stored variable, or nil if it was never set
func (c *Controller) Variable(key string) any {
	return c.data.Variable(key)
}

// Variables returns every stored variable
func (c *Controller) Variables() map[string]any {
	return c.data.Variables()
}

// SetVariable sets a single variable
func (c *Controller) SetVariable(key string, value any) {
	c.data.SetVariable(key, value)
}

// SetVariables merges the given variables into the handle
func (c *Controller) SetVariables(values map[string]any) {
	c.data.SetVariables(values)
}
