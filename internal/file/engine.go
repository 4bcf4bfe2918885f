package file

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/flosch/pongo2/v6"
	"github.com/spf13/afero"

	porterrors "github.com/conneroisu/porter/internal/errors"
)

// Engine names accepted by NewEngine.
const (
	EnginePongo2     = "pongo2"
	EngineGoTemplate = "gotemplate"
)

// Engine compiles template source into an executable template
type Engine interface {
	Name() string
	Compile(name, source string) (Compiled, error)
}

// Compiled is a parsed template ready to execute
type Compiled interface {
	Execute(vars map[string]any) (string, error)
}

// Dependent is implemented by compiled templates that pulled other files in
// at compile time. A change to any of them makes the compiled form stale.
type Dependent interface {
	Dependencies() []string
}

// NewEngine returns the engine registered under name. The pongo2 engine
// resolves {% include %} and {% extends %} against root on fs.
func NewEngine(name string, fs afero.Fs, root string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EnginePongo2:
		return NewPongo2Engine(fs, root), nil
	case EngineGoTemplate:
		return NewGoTemplateEngine(), nil
	default:
		return nil, porterrors.ErrUnknownEngine(name)
	}
}

// Pongo2Engine renders Django-style templates ({{ name }}, {% if %}).
type Pongo2Engine struct {
	fs   afero.Fs
	root string
}

// NewPongo2Engine creates a pongo2 engine backed by fs
func NewPongo2Engine(fs afero.Fs, root string) *Pongo2Engine {
	return &Pongo2Engine{fs: fs, root: root}
}

// Name implements Engine
func (e *Pongo2Engine) Name() string {
	return EnginePongo2
}

// Compile implements Engine. Each template gets its own set so the files it
// includes can be reported by Dependencies.
func (e *Pongo2Engine) Compile(name string, source string) (Compiled, error) {
	loader := &aferoLoader{fs: e.fs, root: e.root, loaded: make(map[string]struct{})}
	tpl, err := pongo2.NewSet(name, loader).FromString(source)
	if err != nil {
		return nil, err
	}
	return &pongo2Template{tpl: tpl, loader: loader}, nil
}

type pongo2Template struct {
	tpl    *pongo2.Template
	loader *aferoLoader
}

func (t *pongo2Template) Execute(vars map[string]any) (string, error) {
	return t.tpl.Execute(pongo2.Context(vars))
}

// Dependencies returns the files read while compiling, such as string
// literal includes and extends.
func (t *pongo2Template) Dependencies() []string {
	return t.loader.paths()
}

// aferoLoader resolves pongo2 includes against the template directory and
// remembers every file it loads.
type aferoLoader struct {
	fs   afero.Fs
	root string

	loaded map[string]struct{}
	mutex  sync.Mutex
}

func (l *aferoLoader) Abs(base, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if base == "" || base == "<string>" {
		return filepath.Join(l.root, name)
	}
	return filepath.Join(filepath.Dir(base), name)
}

func (l *aferoLoader) Get(path string) (io.Reader, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.root, path)
	}
	path = filepath.Clean(path)

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, err
	}

	l.mutex.Lock()
	l.loaded[path] = struct{}{}
	l.mutex.Unlock()

	return bytes.NewReader(data), nil
}

func (l *aferoLoader) paths() []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	paths := make([]string, 0, len(l.loaded))
	for path := range l.loaded {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// GoTemplateEngine renders text/template templates with the sprig
// function map.
type GoTemplateEngine struct {
	funcs template.FuncMap
}

// NewGoTemplateEngine creates a text/template engine
func NewGoTemplateEngine() *GoTemplateEngine {
	return &GoTemplateEngine{
		funcs: sprig.TxtFuncMap(),
	}
}

// Name implements Engine
func (e *GoTemplateEngine) Name() string {
	return EngineGoTemplate
}

// Compile implements Engine
func (e *GoTemplateEngine) Compile(name, source string) (Compiled, error) {
	tpl, err := template.New(filepath.Base(name)).Funcs(e.funcs).Parse(source)
	if err != nil {
		return nil, err
	}
	return &goTemplate{tpl: tpl}, nil
}

type goTemplate struct {
	tpl *template.Template
}

func (t *goTemplate) Execute(vars map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("%s: %w", t.tpl.Name(), err)
	}
	return buf.String(), nil
}
