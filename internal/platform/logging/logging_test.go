package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytrack/internal/platform/logging"
)

func TestNewFiltersBelowLevel(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	logger := logging.New("studytrack", "warn", buf)
	logger.Info("hidden")
	logger.Warn("storage degraded", "key", "studyData_u1")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "storage degraded")
	assert.Contains(t, out, "key=studyData_u1")
}

func TestNewFileAppends(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "studytrack.log")
	logger, closer, err := logging.NewFile("studytrack", "debug", path)
	require.NoError(t, err)
	logger.Debug("tick", "subject", "Math")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "subject=Math")
}
