package file

import porterrors "github.com/conneroisu/porter/internal/errors"

// Controller reads and renders one template file
type Controller struct {
	porter *Porter
	path   string
}

// Path returns the absolute path of the template file
func (c *Controller) Path() string {
	return c.path
}

// RenderedFile renders the file with vars using the porter's engine
func (c *Controller) RenderedFile(vars map[string]any) (string, error) {
	compiled, err := c.porter.compiled(c.path)
	if err != nil {
		return "", err
	}
	if vars == nil {
		vars = map[string]any{}
	}

	output, err := compiled.Execute(vars)
	if err != nil {
		return "", porterrors.ErrTemplateExec(c.path, err)
	}
	return output, nil
}

// RawFile returns the file contents unmodified
func (c *Controller) RawFile() (string, error) {
	source, _, err := c.porter.read(c.path)
	if err != nil {
		return "", err
	}
	return source, nil
}
