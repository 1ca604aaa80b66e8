package table

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Loader reads one input format into a Table.
type Loader interface {
	CanLoad(name string) bool
	Load(name string, r io.Reader, opt Options) (*Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// binary formats people routinely hand us that we cannot read.
var unsupportedExt = map[string]struct{}{
	".xls": {}, ".parquet": {}, ".feather": {}, ".pkl": {},
}

// LoadReader selects a loader by name and reads r. Names without a
// registered extension are read as CSV.
func LoadReader(name string, r io.Reader, opt Options) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if _, bad := unsupportedExt[ext]; bad {
		return nil, fmt.Errorf("%s: %w", ext, ErrUnsupported)
	}
	for _, l := range registry {
		if l.CanLoad(name) {
			return l.Load(name, r, opt)
		}
	}
	return csvLoader{}.Load(name, r, opt)
}

// Load opens path and reads it with the matching loader.
func Load(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return LoadReader(filepath.Base(path), f, opt)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
