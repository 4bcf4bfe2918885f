package file

import (
	"io/fs"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	porterrors "github.com/conneroisu/porter/internal/errors"
)

const testRoot = "/templates"

func newTestPorter(t *testing.T, files map[string]string, opts ...Option) *Porter {
	t.Helper()

	memFs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(memFs, testRoot+"/"+name, []byte(content), 0o644))
	}

	return NewPorter(testRoot, append([]Option{WithFs(memFs)}, opts...)...)
}

func TestPorter_RawFile(t *testing.T) {
	porter := newTestPorter(t, map[string]string{"test/raw.php": "<?php #test"})

	controller, err := porter.Open("test/raw.php")
	require.NoError(t, err)
	assert.Equal(t, testRoot+"/test/raw.php", controller.Path())

	raw, err := controller.RawFile()
	require.NoError(t, err)
	assert.Equal(t, "<?php #test", raw)
}

func TestPorter_RenderedFile(t *testing.T) {
	tests := []struct {
		name     string
		engine   string
		source   string
		vars     map[string]any
		expected string
	}{
		{
			name:     "pongo2 variables",
			engine:   EnginePongo2,
			source:   "{{ string }} {{ int }}",
			vars:     map[string]any{"string": "testing", "bool": true, "int": 123},
			expected: "testing 123",
		},
		{
			name:     "pongo2 compact variables",
			engine:   EnginePongo2,
			source:   "{{string}} {{int}}",
			vars:     map[string]any{"string": "testing", "int": 123},
			expected: "testing 123",
		},
		{
			name:     "pongo2 conditionals",
			engine:   EnginePongo2,
			source:   "{% if bool %}yes{% else %}no{% endif %}",
			vars:     map[string]any{"bool": false},
			expected: "no",
		},
		{
			name:     "pongo2 nil vars",
			engine:   EnginePongo2,
			source:   "saved template",
			expected: "saved template",
		},
		{
			name:     "gotemplate with sprig",
			engine:   EngineGoTemplate,
			source:   `{{ .string | upper }} {{ .int }}`,
			vars:     map[string]any{"string": "testing", "int": 123},
			expected: "TESTING 123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memFs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(memFs, testRoot+"/test/render.tpl", []byte(tt.source), 0o644))

			engine, err := NewEngine(tt.engine, memFs, testRoot)
			require.NoError(t, err)
			porter := NewPorter(testRoot, WithFs(memFs), WithEngine(engine))

			controller, err := porter.Open("test/render.tpl")
			require.NoError(t, err)

			output, err := controller.RenderedFile(tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output)
		})
	}
}

func TestPorter_Include(t *testing.T) {
	porter := newTestPorter(t, map[string]string{
		"page.tpl":            `{% include "partials/header.tpl" %}|{{ title }}`,
		"partials/header.tpl": "header",
	})

	controller, err := porter.Open("page.tpl")
	require.NoError(t, err)

	output, err := controller.RenderedFile(map[string]any{"title": "Home"})
	require.NoError(t, err)
	assert.Equal(t, "header|Home", output)
}

func TestPorter_InvalidateIncludedTemplate(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, testRoot+"/page.html", []byte(`A {% include "partial.html" %}`), 0o644))
	require.NoError(t, afero.WriteFile(memFs, testRoot+"/partial.html", []byte("old"), 0o644))
	porter := NewPorter(testRoot, WithFs(memFs))

	controller, err := porter.Open("page.html")
	require.NoError(t, err)

	output, err := controller.RenderedFile(nil)
	require.NoError(t, err)
	assert.Equal(t, "A old", output)

	// same size and modification time, so only invalidation can reveal it
	stamp := time.Now().Add(-time.Hour)
	require.NoError(t, memFs.Chtimes(testRoot+"/partial.html", stamp, stamp))
	output, err = controller.RenderedFile(nil)
	require.NoError(t, err)
	require.Equal(t, "A old", output)

	require.NoError(t, afero.WriteFile(memFs, testRoot+"/partial.html", []byte("NEW"), 0o644))
	require.NoError(t, memFs.Chtimes(testRoot+"/partial.html", stamp, stamp))
	porter.Invalidate(testRoot + "/partial.html")
	assert.Equal(t, 0, porter.Cached(), "the including template is dropped too")

	output, err = controller.RenderedFile(nil)
	require.NoError(t, err)
	assert.Equal(t, "A NEW", output)
}

func TestPorter_IncludedTemplateChanged(t *testing.T) {
	porter := newTestPorter(t, map[string]string{
		"page.html":           `{% include "partials/nav.html" %}|{{ title }}`,
		"partials/nav.html":   "nav",
		"partials/unused.txt": "x",
	})

	controller, err := porter.Open("page.html")
	require.NoError(t, err)

	output, err := controller.RenderedFile(map[string]any{"title": "Home"})
	require.NoError(t, err)
	assert.Equal(t, "nav|Home", output)

	require.NoError(t, afero.WriteFile(porter.Fs(), testRoot+"/partials/nav.html", []byte("new nav"), 0o644))

	output, err = controller.RenderedFile(map[string]any{"title": "Home"})
	require.NoError(t, err)
	assert.Equal(t, "new nav|Home", output)

	porter.Invalidate(testRoot + "/partials/unused.txt")
	assert.Equal(t, 1, porter.Cached(), "unrelated paths leave the entry alone")
}

func TestPorter_SameSizeEdit(t *testing.T) {
	memFs := afero.NewMemMapFs()
	path := testRoot + "/page.html"
	stamp := time.Now().Add(-time.Hour)
	require.NoError(t, afero.WriteFile(memFs, path, []byte("v1"), 0o644))
	require.NoError(t, memFs.Chtimes(path, stamp, stamp))
	porter := NewPorter(testRoot, WithFs(memFs))

	controller, err := porter.Open("page.html")
	require.NoError(t, err)

	output, err := controller.RenderedFile(nil)
	require.NoError(t, err)
	assert.Equal(t, "v1", output)

	require.NoError(t, afero.WriteFile(memFs, path, []byte("v2"), 0o644))
	require.NoError(t, memFs.Chtimes(path, stamp, stamp))

	output, err = controller.RenderedFile(nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", output)
}

func TestPorter_MissingFile(t *testing.T) {
	porter := newTestPorter(t, nil)

	controller, err := porter.Open("missing.tpl")
	require.NoError(t, err, "opening is lazy")

	_, err = controller.RenderedFile(nil)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.True(t, porterrors.IsNotFound(err))

	_, err = controller.RawFile()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestPorter_Directory(t *testing.T) {
	porter := newTestPorter(t, map[string]string{"dir/inner.tpl": "x"})

	controller, err := porter.Open("dir")
	require.NoError(t, err)

	_, err = controller.RawFile()
	require.Error(t, err)
	assert.False(t, porterrors.IsNotFound(err))
}

func TestPorter_SyntaxError(t *testing.T) {
	porter := newTestPorter(t, map[string]string{"broken.tpl": "{% if %}"})

	controller, err := porter.Open("broken.tpl")
	require.NoError(t, err)

	_, err = controller.RenderedFile(nil)
	require.Error(t, err)
	assert.True(t, errorIs(err, porterrors.ErrCodeTemplateSyntax))
	assert.True(t, porterrors.IsTemplateError(err))

	raw, err := controller.RawFile()
	require.NoError(t, err, "raw reads never parse")
	assert.Equal(t, "{% if %}", raw)
}

func TestPorter_ExecError(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, testRoot+"/exec.tpl", []byte(`{{ fail "boom" }}`), 0o644))
	porter := NewPorter(testRoot, WithFs(memFs), WithEngine(NewGoTemplateEngine()))

	controller, err := porter.Open("exec.tpl")
	require.NoError(t, err)

	_, err = controller.RenderedFile(nil)
	require.Error(t, err)
	assert.True(t, errorIs(err, porterrors.ErrCodeTemplateExec))
}

func TestPorter_PathEscape(t *testing.T) {
	porter := newTestPorter(t, nil)

	tests := []string{"../secret.tpl", "/etc/passwd", "a/../../b.tpl"}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			_, err := porter.Open(path)
			require.Error(t, err)
			assert.True(t, porterrors.IsSecurityError(err))
		})
	}

	_, err := porter.Open(testRoot + "/inside.tpl")
	assert.NoError(t, err)
}

func TestPorter_CompiledCache(t *testing.T) {
	memFs := afero.NewMemMapFs()
	path := testRoot + "/cached.tpl"
	require.NoError(t, afero.WriteFile(memFs, path, []byte("v1 {{ n }}"), 0o644))
	porter := NewPorter(testRoot, WithFs(memFs))

	controller, err := porter.Open("cached.tpl")
	require.NoError(t, err)

	output, err := controller.RenderedFile(map[string]any{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, "v1 1", output)
	assert.Equal(t, 1, porter.Cached())

	require.NoError(t, afero.WriteFile(memFs, path, []byte("version two {{ n }}"), 0o644))
	porter.Invalidate(path)
	assert.Equal(t, 0, porter.Cached())

	output, err = controller.RenderedFile(map[string]any{"n": 2})
	require.NoError(t, err)
	assert.Equal(t, "version two 2", output)

	porter.Clear()
	assert.Equal(t, 0, porter.Cached())
}

func TestPorter_List(t *testing.T) {
	porter := newTestPorter(t, map[string]string{
		"b.tpl":        "bb",
		"a/nested.tpl": "nested",
		"test/raw.php": "<?php #test",
	})

	infos, err := porter.List()
	require.NoError(t, err)
	require.Len(t, infos, 3)

	assert.Equal(t, "a/nested.tpl", infos[0].RelPath)
	assert.Equal(t, "b.tpl", infos[1].RelPath)
	assert.Equal(t, int64(2), infos[1].Size)
	assert.Equal(t, "test/raw.php", infos[2].RelPath)
}

func TestPorter_ListMissingRoot(t *testing.T) {
	porter := NewPorter("/nowhere", WithFs(afero.NewMemMapFs()))

	_, err := porter.List()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestNewEngine(t *testing.T) {
	memFs := afero.NewMemMapFs()

	engine, err := NewEngine("", memFs, testRoot)
	require.NoError(t, err)
	assert.Equal(t, EnginePongo2, engine.Name())

	engine, err = NewEngine("GoTemplate", memFs, testRoot)
	require.NoError(t, err)
	assert.Equal(t, EngineGoTemplate, engine.Name())

	_, err = NewEngine("mustache", memFs, testRoot)
	assert.Error(t, err)
}

func errorIs(err error, code string) bool {
	value, ok := err.(*porterrors.PorterError)
	return ok && value.Code == code
}
