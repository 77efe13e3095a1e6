package catalog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/jaro/internal/fuzzy"
)

// ErrInvalidEntry is returned for YAML entries without text.
var ErrInvalidEntry = errors.New("invalid catalog entry")

// Parse decodes catalog data, choosing the format from name's extension.
func Parse(name string, data []byte) ([]fuzzy.Item, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseText(bytes.NewReader(data))
	}
}

// ParseText reads one candidate per line.
func ParseText(r io.Reader) ([]fuzzy.Item, error) {
	var items []fuzzy.Item
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, fuzzy.Item{Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return items, nil
}

type yamlEntry struct {
	Text string `yaml:"text"`
	Data any    `yaml:"data"`
}

// ParseYAML decodes a YAML sequence of strings or {text, data} mappings.
// An empty document yields no items.
func ParseYAML(data []byte) ([]fuzzy.Item, error) {
	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	items := make([]fuzzy.Item, 0, len(nodes))
	for i := range nodes {
		node := &nodes[i]
		switch node.Kind {
		case yaml.ScalarNode:
			if node.Value == "" {
				return nil, fmt.Errorf("%w at line %d: empty text", ErrInvalidEntry, node.Line)
			}
			items = append(items, fuzzy.Item{Text: node.Value})
		case yaml.MappingNode:
			var e yamlEntry
			if err := node.Decode(&e); err != nil {
				return nil, fmt.Errorf("%w at line %d: %w", ErrInvalidEntry, node.Line, err)
			}
			if e.Text == "" {
				return nil, fmt.Errorf("%w at line %d: missing text", ErrInvalidEntry, node.Line)
			}
			items = append(items, fuzzy.Item{Text: e.Text, Data: e.Data})
		default:
			return nil, fmt.Errorf("%w at line %d: expected string or mapping", ErrInvalidEntry, node.Line)
		}
	}
	return items, nil
}
