package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/jaro/internal/fuzzy"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func texts(items []fuzzy.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func writeCatalog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseText(t *testing.T) {
	items, err := ParseText(strings.NewReader("# fruit\napple\n\n  banana  \n#cherry\ndurian\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana", "durian"}, texts(items))
}

func TestParseYAML(t *testing.T) {
	items, err := ParseYAML([]byte(`
- apple
- text: banana
  data:
    sku: 42
- "cherry pie"
`))
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"apple", "banana", "cherry pie"}, texts(items))
	assert.Equal(t, map[string]any{"sku": 42}, items[1].Data)
	assert.Nil(t, items[0].Data)
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing text", "- apple\n- data: 1\n"},
		{"nested list", "- [a, b]\n"},
		{"empty scalar", "- \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}

	_, err := ParseYAML([]byte("apple: 1\n"))
	assert.Error(t, err)

	items, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestParseByExtension(t *testing.T) {
	items, err := Parse("words.YML", []byte("- a\n- b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, texts(items))

	items, err = Parse("words.txt", []byte("- a\n- b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"- a", "- b"}, texts(items))
}

func TestOpenAndReload(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, "names.txt", "martha\ndwayne\n")

	c, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"martha", "dwayne"}, texts(c.Items()))
	assert.Equal(t, 2, c.Len())
	assert.True(t, filepath.IsAbs(c.Path()))

	// Snapshots are independent of the catalog.
	snapshot := c.Items()
	snapshot[0].Text = "changed"
	assert.Equal(t, "martha", c.Items()[0].Text)

	writeCatalog(t, dir, "names.txt", "dixon\n")
	require.NoError(t, c.Reload())
	assert.Equal(t, []string{"dixon"}, texts(c.Items()))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Reloads)
	assert.Equal(t, 1, stats.Items)
	assert.NoError(t, stats.LastError)
}

func TestReloadKeepsItemsOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, "names.yaml", "- martha\n")

	c, err := Open(path)
	require.NoError(t, err)

	writeCatalog(t, dir, "names.yaml", "- [broken\n")
	assert.Error(t, c.Reload())
	assert.Equal(t, []string{"martha"}, texts(c.Items()))
	assert.Error(t, c.Stats().LastError)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewInMemory(t *testing.T) {
	items := []fuzzy.Item{{Text: "a"}, {Text: "b"}}
	c := New(items)
	items[0].Text = "z"

	assert.Equal(t, []string{"a", "b"}, texts(c.Items()))
	assert.NoError(t, c.Reload())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, c.Watch(ctx))
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, "names.txt", "martha\n")

	core, logs := observer.New(zapcore.InfoLevel)
	c, err := Open(path, WithLogger(zap.New(core)), WithDebounce(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("watching catalog").Len() == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Unrelated files in the same directory are ignored.
	writeCatalog(t, dir, "other.txt", "ignored\n")
	writeCatalog(t, dir, "names.txt", "martha\nmarhta\n")

	require.Eventually(t, func() bool {
		return c.Len() == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"martha", "marhta"}, texts(c.Items()))

	cancel()
	require.NoError(t, <-done)
	assert.GreaterOrEqual(t, logs.FilterMessage("catalog reloaded").Len(), 1)
}

func TestWatchMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, "names.txt", "a\n")
	c, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, c.Watch(context.Background()))
}
