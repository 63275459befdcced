package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURLList(t *testing.T) {
	in := `
# interview posts
https://a.example.com/1

  https://b.example.com/2  
`
	urls, err := parseURLList(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com/1", "https://b.example.com/2"}, urls)
}

func TestReadURLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://a.example.com/1\n"), 0o644))

	urls, err := readURLFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com/1"}, urls)

	_, err = readURLFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
