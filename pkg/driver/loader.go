package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"kestrel/interpreter-go/pkg/ast"
	"kestrel/interpreter-go/pkg/parser"
)

// SourceExt is the file extension of Kestrel scripts.
const SourceExt = ".kst"

// EntryFile is the script run when a directory is given as the entry.
const EntryFile = "main" + SourceExt

// Module is one parsed source file.
type Module struct {
	Name   string
	Origin string
	Source []byte
	AST    *ast.Module
}

// Program contains the entry module.
type Program struct {
	Entry *Module
}

// Loader parses Kestrel source files into modules.
type Loader struct {
	parser *parser.ModuleParser
}

func NewLoader() (*Loader, error) {
	mp, err := parser.NewModuleParser()
	if err != nil {
		return nil, err
	}
	return &Loader{parser: mp}, nil
}

// Close releases parser resources.
func (l *Loader) Close() {
	if l == nil {
		return
	}
	if l.parser != nil {
		l.parser.Close()
		l.parser = nil
	}
}

// Load reads and parses entry. A directory entry resolves to its main.kst.
func (l *Loader) Load(entry string) (*Program, error) {
	if l == nil || l.parser == nil {
		return nil, errors.New("loader: closed")
	}
	path, err := ResolveEntry(entry)
	if err != nil {
		return nil, err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loader: read %s", path)
	}
	return l.LoadSource(path, source)
}

// LoadSource parses in-memory source recorded under name.
func (l *Loader) LoadSource(name string, source []byte) (*Program, error) {
	if l == nil || l.parser == nil {
		return nil, errors.New("loader: closed")
	}
	mod, err := l.parser.WithOrigin(name).ParseModule(source)
	if err != nil {
		return nil, err
	}
	return &Program{Entry: &Module{
		Name:   moduleName(name),
		Origin: name,
		Source: source,
		AST:    mod,
	}}, nil
}

// ResolveEntry turns a file or directory argument into the script path.
func ResolveEntry(entry string) (string, error) {
	if entry == "" {
		return "", errors.New("loader: empty entry path")
	}
	abs, err := filepath.Abs(entry)
	if err != nil {
		return "", errors.Wrap(err, "loader: resolve entry path")
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrapf(err, "loader: stat entry %s", abs)
	}
	if info.IsDir() {
		candidate := filepath.Join(abs, EntryFile)
		if _, err := os.Stat(candidate); err != nil {
			return "", fmt.Errorf("loader: directory %s has no %s", abs, EntryFile)
		}
		return candidate, nil
	}
	return abs, nil
}

// Discover lists the scripts under root in lexical order, skipping hidden
// directories.
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == SourceExt {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "loader: scan %s", root)
	}
	sort.Strings(files)
	return files, nil
}

func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
