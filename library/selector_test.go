package library

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, token := range []string{"csv", "CSV", " Csv "} {
		k, err := ParseKind(token)
		require.NoError(t, err, token)
		assert.Equal(t, KindCSV, k)
	}
	k, err := ParseKind("SERIAL")
	require.NoError(t, err)
	assert.Equal(t, KindSerial, k)

	_, err = ParseKind("xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedBackendKind))
	assert.Contains(t, err.Error(), "xyz")
}

func TestSelectBackend(t *testing.T) {
	opts := DefaultStorageOptions(t.TempDir())

	b, kind, err := SelectBackend("csv", opts)
	require.NoError(t, err)
	assert.Equal(t, KindCSV, kind)
	assert.IsType(t, &TextBackend{}, b)

	b, kind, err = SelectBackend("Serial", opts)
	require.NoError(t, err)
	assert.Equal(t, KindSerial, kind)
	assert.IsType(t, &SnapshotBackend{}, b)

	b, _, err = SelectBackend("xyz", opts)
	assert.Nil(t, b)
	assert.True(t, errors.Is(err, ErrUnsupportedBackendKind))
}

func TestNewBackendUnknownKind(t *testing.T) {
	_, err := NewBackend(Kind("json"), StorageOptions{})
	assert.True(t, errors.Is(err, ErrUnsupportedBackendKind))
}

func TestPromptBackendRetriesUntilValid(t *testing.T) {
	in := bufio.NewScanner(strings.NewReader("xml\n\nserial\n"))
	var out bytes.Buffer

	b, kind, err := PromptBackend(in, &out, DefaultStorageOptions(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, KindSerial, kind)
	assert.IsType(t, &SnapshotBackend{}, b)

	assert.Equal(t, 2, strings.Count(out.String(), "Choose again"))
	assert.Contains(t, out.String(), `"xml"`)
	assert.Contains(t, out.String(), "CSV")
	assert.Contains(t, out.String(), "SERIAL")
}

func TestPromptBackendEndOfInput(t *testing.T) {
	in := bufio.NewScanner(strings.NewReader("nope\n"))
	_, _, err := PromptBackend(in, io.Discard, StorageOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}
