package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kestrel/interpreter-go/pkg/ast"
	"kestrel/interpreter-go/pkg/parser"
)

func writeScript(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func newLoader(t *testing.T) *Loader {
	t.Helper()
	loader, err := NewLoader()
	require.NoError(t, err)
	t.Cleanup(loader.Close)
	return loader
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "count.kst", "my n = 1;\nsay(n);\n")

	program, err := newLoader(t).Load(path)
	require.NoError(t, err)
	require.NotNil(t, program.Entry)
	assert.Equal(t, "count", program.Entry.Name)
	assert.Equal(t, path, program.Entry.Origin)
	require.Len(t, program.Entry.AST.Body, 2)
	assert.Equal(t, ast.NodeFunctionCall, program.Entry.AST.Body[1].NodeType())
}

func TestLoadDirectoryUsesMain(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "main.kst", "say(1);")

	program, err := newLoader(t).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "main", program.Entry.Name)

	empty := t.TempDir()
	_, err = newLoader(t).Load(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no main.kst")
}

func TestLoadReportsParseErrorsWithOrigin(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "bad.kst", "while (1) {\n  goto;\n}\n")

	_, err := newLoader(t).Load(path)
	require.Error(t, err)
	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Location.Line)
	assert.True(t, strings.HasPrefix(err.Error(), path+":2:"), err.Error())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := newLoader(t).Load(filepath.Join(t.TempDir(), "nope.kst"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "b.kst", "")
	writeScript(t, dir, "a.kst", "")
	writeScript(t, dir, "nested/c.kst", "")
	writeScript(t, dir, ".hidden/d.kst", "")
	writeScript(t, dir, "notes.txt", "")

	files, err := Discover(dir)
	require.NoError(t, err)
	want := []string{
		filepath.Join(dir, "a.kst"),
		filepath.Join(dir, "b.kst"),
		filepath.Join(dir, "nested", "c.kst"),
	}
	assert.Equal(t, want, files)
}

func TestClosedLoader(t *testing.T) {
	loader, err := NewLoader()
	require.NoError(t, err)
	loader.Close()
	_, err = loader.LoadSource("x.kst", []byte("1"))
	assert.EqualError(t, err, "loader: closed")
}
