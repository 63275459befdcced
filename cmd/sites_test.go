package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/interview-crawler/internal/adapter"
)

func TestPrintSites(t *testing.T) {
	reg, err := adapter.Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printSites(&buf, reg))

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "nowcoder")
	assert.Contains(t, out, "牛客网")
	assert.Equal(t, len(reg.IDs())+1, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]string{"q": "<div>"}))
	assert.Equal(t, "{\n  \"q\": \"<div>\"\n}\n", buf.String())
}
