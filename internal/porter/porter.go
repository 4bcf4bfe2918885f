// Package porter is the front end for template handles. A Porter builds
// template.Controllers for files under its template directory and keeps a
// cache of saved controllers keyed by an identifier derived from the
// filename, so every caller asking for the same template shares one handle
// and the variables set on it.
package porter

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/conneroisu/porter/internal/logging"
	"github.com/conneroisu/porter/internal/template"
)

// FileProvider builds the file object a controller renders
type FileProvider interface {
	NewFileController(path string) (template.File, error)
}

// FileProviderFunc adapts a function to FileProvider
type FileProviderFunc func(path string) (template.File, error)

// NewFileController implements FileProvider
func (f FileProviderFunc) NewFileController(path string) (template.File, error) {
	return f(path)
}

// Porter creates template controllers and caches saved ones
type Porter struct {
	templateDir string
	files       FileProvider
	logger      logging.Logger

	saved map[string]*template.Controller
	mutex sync.Mutex
}

// Option configures a Porter
type Option func(*Porter)

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(p *Porter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a porter that resolves filenames against templateDir and
// obtains file objects from files.
func New(templateDir string, files FileProvider, opts ...Option) *Porter {
	if abs, err := filepath.Abs(templateDir); err == nil {
		templateDir = abs
	}

	p := &Porter{
		templateDir: templateDir,
		files:       files,
		logger:      logging.NewNopLogger(),
		saved:       make(map[string]*template.Controller),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.logger = p.logger.WithComponent("porter")
	return p
}

// TemplateDir returns the directory filenames are resolved against
func (p *Porter) TemplateDir() string {
	return p.templateDir
}

// Files returns the provider file objects are obtained from
func (p *Porter) Files() FileProvider {
	return p.files
}

// NewController builds a fresh controller for filename with no variables.
// It never reads or writes the saved cache.
func (p *Porter) NewController(filename string) (*template.Controller, error) {
	file, err := p.files.NewFileController(filepath.Join(p.templateDir, filename))
	if err != nil {
		return nil, err
	}

	id := IDFromFilename(filename)
	p.logger.Debug(context.Background(), "Created template controller",
		"template_id", id,
		"filename", filename,
	)

	return template.NewController(template.NewData(id), file, template.NewService()), nil
}

// SavedController returns the saved controller for filename, creating and
// saving one on first use. Filenames with the same identifier share the
// same controller.
func (p *Porter) SavedController(filename string) (*template.Controller, error) {
	id := IDFromFilename(filename)

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if controller, exists := p.saved[id]; exists {
		p.logger.Debug(context.Background(), "Reusing saved template controller", "template_id", id)
		return controller, nil
	}

	controller, err := p.NewController(filename)
	if err != nil {
		return nil, err
	}
	p.saved[id] = controller

	return controller, nil
}

// Saved returns the identifiers of every saved controller, sorted
func (p *Porter) Saved() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	ids := make([]string, 0, len(p.saved))
	for id := range p.saved {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var idReplacer = strings.NewReplacer("/", "_", "\\", "_", ".", "_")

// IDFromFilename makes a cache identifier from a template filename: it is
// lower-cased and every '/', '\' and '.' becomes '_'. The mapping is lossy,
// so "a.b" and "a/b" both yield "a_b" and share a saved controller.
func IDFromFilename(filename string) string {
	return idReplacer.Replace(strings.ToLower(filename))
}
