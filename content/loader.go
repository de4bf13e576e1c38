package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Loader fetches a content set by identifier.
type Loader interface {
	Load(id string) (*Set, error)
}

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// FileLoader reads <Dir>/<id>.yaml (or .yml).
type FileLoader struct {
	Dir string
}

func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{Dir: dir}
}

func (l *FileLoader) Load(id string) (*Set, error) {
	if !validID.MatchString(id) {
		return nil, ErrUnknownContent
	}

	var (
		data []byte
		err  error
	)
	for _, ext := range []string{".yaml", ".yml"} {
		data, err = os.ReadFile(filepath.Join(l.Dir, id+ext))
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			break
		}
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrUnknownContent
	}
	if err != nil {
		return nil, &LoadError{ID: id, Err: err}
	}

	return Parse(id, data)
}

// Parse decodes a YAML content set. Unknown fields are rejected.
func Parse(id string, data []byte) (*Set, error) {
	var set Set
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil {
		return nil, &LoadError{ID: id, Err: err}
	}
	switch set.ID {
	case "":
		set.ID = id
	case id:
	default:
		return nil, &LoadError{ID: id, Err: fmt.Errorf("declared id %q does not match %q", set.ID, id)}
	}
	if err := set.Validate(); err != nil {
		return nil, &LoadError{ID: id, Err: err}
	}
	return &set, nil
}
