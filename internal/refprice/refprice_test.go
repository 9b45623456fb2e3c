package refprice

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	content := `{"categorias": {"Celulares": {"iPhone 13 128GB": {"nuevo": 599990, "usado": 420000}}}}`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := Load(path)
	assert.NoError(t, err)

	categorias, ok := table["categorias"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, categorias, "Celulares")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	assert.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEmpty(t *testing.T) {
	table := Empty()
	assert.Contains(t, table, "categorias")
}
