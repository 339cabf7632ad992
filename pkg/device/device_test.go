package device

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDelay(t *testing.T) {
	assert.Equal(t, time.Duration(0), toDelay(0))
	assert.Equal(t, time.Duration(0), toDelay(-1))
	assert.Equal(t, 100*time.Millisecond, toDelay(0.1))
	assert.Equal(t, 2*time.Second, toDelay(2))
}

func TestEncodeFileBase64(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(path, []byte("fake png"), 0644))

	encoded, err := encodeFileBase64(path)
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, "fake png", string(decoded))

	_, err = encodeFileBase64(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestTempShotPathIsUnique(t *testing.T) {
	a := tempShotPath()
	time.Sleep(time.Microsecond)
	b := tempShotPath()
	assert.NotEqual(t, a, b)
}
