package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultIncludeDepth bounds nested "@include" directives.
const DefaultIncludeDepth = 8

// fileLoader holds the behavior shared by the format-specific loaders.
type fileLoader struct {
	fs    FileSystem
	path  string
	parse func(source string, data []byte) (map[string]any, error)
}

// Load reads configuration from the configured path, following includes.
func (l *fileLoader) Load() (map[string]any, error) {
	return l.LoadWithIncludes(l.path, DefaultIncludeDepth)
}

// LoadFrom reads configuration from a specific path without following includes.
func (l *fileLoader) LoadFrom(path string) (map[string]any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // File doesn't exist, not an error
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return l.parse(path, data)
}

func (l *fileLoader) loadReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.parse("<reader>", data)
}

// LoadWithIncludes loads path and merges the files named by its "@include"
// key underneath it. Relative includes resolve against the including file.
func (l *fileLoader) LoadWithIncludes(path string, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncludeDepthExceeded, path)
	}

	config, err := l.LoadFrom(path)
	if err != nil || config == nil {
		return config, err
	}

	includes, ok := config["@include"]
	if !ok {
		return config, nil
	}
	delete(config, "@include")

	list, err := includeList(includes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	for _, inc := range list {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(baseDir, inc)
		}

		incConfig, err := l.LoadWithIncludes(inc, maxDepth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", inc, err)
		}

		// The including file wins over what it includes.
		config = DeepMerge(incConfig, config)
	}

	return config, nil
}

func includeList(v any) ([]string, error) {
	switch v := v.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("@include must be string or array of strings, got %T element", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("@include must be string or array of strings, got %T", v)
	}
}
