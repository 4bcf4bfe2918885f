package template

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFile substitutes {{key}} placeholders and records what it was given
type fakeFile struct {
	source    string
	err       error
	renderArg map[string]any
	renders   int
}

func (f *fakeFile) RenderedFile(vars map[string]any) (string, error) {
	f.renders++
	f.renderArg = vars
	if f.err != nil {
		return "", f.err
	}
	out := f.source
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", fmt.Sprint(value))
	}
	return out, nil
}

func (f *fakeFile) RawFile() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.source, nil
}

func TestData(t *testing.T) {
	data := NewData("test_render_php")

	assert.Equal(t, "test_render_php", data.ID())
	assert.Empty(t, data.Variables())

	data.SetID("other")
	assert.Equal(t, "other", data.ID())

	assert.Nil(t, data.Variable("missing"))

	data.SetVariables(map[string]any{"a": 1, "b": 2})
	data.SetVariable("a", 9)
	assert.Equal(t, map[string]any{"a": 9, "b": 2}, data.Variables())
	assert.Equal(t, 2, data.Variable("b"))
}

func TestService_RenderedTemplate(t *testing.T) {
	data := NewData("test")
	data.SetVariables(map[string]any{"string": "testing", "int": 123})
	file := &fakeFile{source: "{{string}} {{int}}"}

	output, err := NewService().RenderedTemplate(data, file)

	require.NoError(t, err)
	assert.Equal(t, "testing 123", output)
	assert.Equal(t, data.Variables(), file.renderArg)
}

func TestService_RawTemplate(t *testing.T) {
	file := &fakeFile{source: "<?php #test"}

	output, err := NewService().RawTemplate(file)

	require.NoError(t, err)
	assert.Equal(t, "<?php #test", output)
}

func TestService_PropagatesErrors(t *testing.T) {
	sentinel := errors.New("template syntax error")
	file := &fakeFile{err: sentinel}
	service := NewService()

	_, err := service.RenderedTemplate(NewData("test"), file)
	assert.Same(t, sentinel, err)

	_, err = service.RawTemplate(file)
	assert.Same(t, sentinel, err)
}

func TestController(t *testing.T) {
	t.Run("rendered template", func(t *testing.T) {
		controller := NewController(NewData("test_render_php"), &fakeFile{source: "{{string}} {{int}}"}, NewService())
		controller.SetVariables(map[string]any{
			"string": "testing",
			"bool":   true,
			"int":    123,
		})

		output, err := controller.RenderedTemplate()

		require.NoError(t, err)
		assert.Equal(t, "testing "+fmt.Sprint(controller.Variable("int")), output)
	})

	t.Run("raw template", func(t *testing.T) {
		controller := NewController(NewData("test_raw_php"), &fakeFile{source: "<?php #test"}, NewService())

		output, err := controller.RawTemplate()

		require.NoError(t, err)
		assert.Equal(t, "<?php #test", output)
	})

	t.Run("missing file", func(t *testing.T) {
		controller := NewController(NewData("missing"), &fakeFile{err: fs.ErrNotExist}, NewService())

		output, err := controller.RenderedTemplate()

		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.Empty(t, output)
	})

	t.Run("variables", func(t *testing.T) {
		controller := NewController(NewData("vars"), &fakeFile{}, NewService())

		assert.Equal(t, "vars", controller.ID())
		assert.Nil(t, controller.Variable("never"))

		controller.SetVariable("k", "v")
		assert.Equal(t, "v", controller.Variable("k"))

		controller.SetVariables(map[string]any{"a": 1, "b": 2})
		controller.SetVariable("a", 9)
		assert.Equal(t, map[string]any{"k": "v", "a": 9, "b": 2}, controller.Variables())
	})

	t.Run("renders with its own file", func(t *testing.T) {
		first := &fakeFile{source: "first"}
		second := &fakeFile{source: "second"}
		a := NewController(NewData("a"), first, NewService())
		b := NewController(NewData("b"), second, NewService())

		out, err := a.RenderedTemplate()
		require.NoError(t, err)
		assert.Equal(t, "first", out)
		assert.Equal(t, 1, first.renders)
		assert.Equal(t, 0, second.renders)

		out, err = b.RenderedTemplate()
		require.NoError(t, err)
		assert.Equal(t, "second", out)
	})
}
