// Package file provides the template file layer: file controllers that read
// template sources from an afero filesystem and render them through a
// pluggable engine (pongo2 or text/template with sprig).
//
// The Porter hands out controllers for paths under its root directory and
// keeps compiled templates cached by path. An entry is reused while the
// file's content hash matches and every file it included is unchanged in
// modification time and size. Invalidate drops the entries for a path and
// for every template that included it.
package file

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	porterrors "github.com/conneroisu/porter/internal/errors"
	"github.com/conneroisu/porter/internal/logging"
	"github.com/conneroisu/porter/internal/template"
)

// Porter creates file controllers for templates under one root directory
type Porter struct {
	fs     afero.Fs
	root   string
	engine Engine
	logger logging.Logger

	cache map[string]*compiledEntry
	mutex sync.RWMutex
}

type compiledEntry struct {
	compiled Compiled
	sum      uint64
	deps     map[string]fingerprint
}

// fingerprint identifies one version of an included file
type fingerprint struct {
	modTime time.Time
	size    int64
}

func (e *compiledEntry) dependsOn(path string) bool {
	_, ok := e.deps[path]
	return ok
}

// Info describes a template file found under the root
type Info struct {
	Path    string
	RelPath string
	Size    int64
	ModTime time.Time
}

// Option configures a Porter
type Option func(*Porter)

// WithFs replaces the filesystem, afero.NewOsFs by default
func WithFs(fs afero.Fs) Option {
	return func(p *Porter) {
		if fs != nil {
			p.fs = fs
		}
	}
}

// WithEngine sets the template engine, pongo2 by default
func WithEngine(engine Engine) Option {
	return func(p *Porter) {
		if engine != nil {
			p.engine = engine
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(p *Porter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPorter creates a file porter rooted at root
func NewPorter(root string, opts ...Option) *Porter {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	p := &Porter{
		fs:     afero.NewOsFs(),
		root:   filepath.Clean(root),
		logger: logging.NewNopLogger(),
		cache:  make(map[string]*compiledEntry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.engine == nil {
		p.engine = NewPongo2Engine(p.fs, p.root)
	}
	p.logger = p.logger.WithComponent("file")
	return p
}

// Root returns the template directory
func (p *Porter) Root() string {
	return p.root
}

// Fs returns the filesystem templates are read from
func (p *Porter) Fs() afero.Fs {
	return p.fs
}

// Engine returns the template engine
func (p *Porter) Engine() Engine {
	return p.engine
}

// Open returns a controller for path. Relative paths are taken relative to
// the root. The file is not read until it is rendered, so a missing file is
// reported by RenderedFile and RawFile.
func (p *Porter) Open(path string) (*Controller, error) {
	clean, err := p.resolve(path)
	if err != nil {
		return nil, err
	}
	return &Controller{porter: p, path: clean}, nil
}

// NewFileController implements the provider contract used by the template
// registry.
func (p *Porter) NewFileController(path string) (template.File, error) {
	return p.Open(path)
}

// Invalidate drops the compiled template cached for path and every cached
// template that included path.
func (p *Porter) Invalidate(path string) {
	clean := filepath.Clean(path)

	p.mutex.Lock()
	dropped := 0
	for key, entry := range p.cache {
		if key == clean || entry.dependsOn(clean) {
			delete(p.cache, key)
			dropped++
		}
	}
	p.mutex.Unlock()

	if dropped > 0 {
		p.logger.Debug(context.Background(), "Invalidated compiled templates",
			"path", clean,
			"dropped", dropped,
		)
	}
}

// Clear drops every compiled template
func (p *Porter) Clear() {
	p.mutex.Lock()
	p.cache = make(map[string]*compiledEntry)
	p.mutex.Unlock()
}

// Cached returns the number of compiled templates held
func (p *Porter) Cached() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return len(p.cache)
}

// List returns every regular file under the root, sorted by relative path
func (p *Porter) List() ([]Info, error) {
	var infos []Info
	err := afero.Walk(p.fs, p.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(p.root, path)
		if relErr != nil {
			rel = path
		}
		infos = append(infos, Info{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, porterrors.ErrFileNotFound(p.root)
		}
		return nil, porterrors.ErrFileRead(p.root, err)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].RelPath < infos[j].RelPath
	})
	return infos, nil
}

func (p *Porter) resolve(path string) (string, error) {
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) {
		clean = filepath.Join(p.root, clean)
	}

	rel, err := filepath.Rel(p.root, clean)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", porterrors.ErrPathEscape(path)
	}
	return clean, nil
}

func (p *Porter) read(path string) (string, os.FileInfo, error) {
	info, err := p.fs.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", nil, porterrors.ErrFileNotFound(path)
		}
		return "", nil, porterrors.ErrFileRead(path, err)
	}
	if info.IsDir() {
		return "", nil, porterrors.ErrFileRead(path, stderrors.New("is a directory"))
	}

	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", nil, porterrors.ErrFileNotFound(path)
		}
		return "", nil, porterrors.ErrFileRead(path, err)
	}
	return string(data), info, nil
}

func (p *Porter) compiled(path string) (Compiled, error) {
	source, _, err := p.read(path)
	if err != nil {
		if porterrors.IsNotFound(err) {
			p.Invalidate(path)
		}
		return nil, err
	}
	sum := xxhash.Sum64String(source)

	p.mutex.RLock()
	entry, ok := p.cache[path]
	p.mutex.RUnlock()
	if ok && entry.sum == sum && p.depsUnchanged(entry.deps) {
		return entry.compiled, nil
	}

	op := logging.StartOperation(p.logger, "compile")
	compiled, err := p.engine.Compile(path, source)
	if err != nil {
		err = porterrors.ErrTemplateSyntax(path, err)
		op.EndWithError(context.Background(), err)
		return nil, err
	}
	op.End(context.Background(), "path", path, "engine", p.engine.Name())

	entry = &compiledEntry{compiled: compiled, sum: sum}
	if dependent, ok := compiled.(Dependent); ok {
		entry.deps = p.fingerprints(dependent.Dependencies())
	}

	p.mutex.Lock()
	p.cache[path] = entry
	p.mutex.Unlock()

	return compiled, nil
}

func (p *Porter) fingerprints(paths []string) map[string]fingerprint {
	if len(paths) == 0 {
		return nil
	}
	deps := make(map[string]fingerprint, len(paths))
	for _, path := range paths {
		var fp fingerprint
		if info, err := p.fs.Stat(path); err == nil {
			fp = fingerprint{modTime: info.ModTime(), size: info.Size()}
		}
		deps[filepath.Clean(path)] = fp
	}
	return deps
}

func (p *Porter) depsUnchanged(deps map[string]fingerprint) bool {
	for path, fp := range deps {
		info, err := p.fs.Stat(path)
		if err != nil {
			return false
		}
		if !info.ModTime().Equal(fp.modTime) || info.Size() != fp.size {
			return false
		}
	}
	return true
}
