package template

// File is the template source a Controller renders. Implementations read
// the underlying file and interpret its template syntax.
type File interface {
	// RenderedFile renders the file with vars substituted
	RenderedFile(vars map[string]any) (string, error)
	// RawFile returns the file contents unmodified
	RawFile() (string, error)
}

// Service renders a File using the variables held by a Data record. It is
// stateless and safe to share.
type Service struct{}

// NewService creates a template service
func NewService() *Service {
	return &Service{}
}

// RenderedTemplate renders file with the variables from data. Errors from
// file are returned as is.
func (s *Service) RenderedTemplate(data *Data, file File) (string, error) {
	return file.RenderedFile(data.Variables())
}

// RawTemplate returns the unparsed source of file
func (s *Service) RawTemplate(file File) (string, error) {
	return file.RawFile()
}
