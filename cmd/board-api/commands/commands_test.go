package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVersionCommand(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := NewVersionCommand()
	cmd.SetOut(out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "board-api dev\n", out.String())
}

func TestInitCommandCreatesFileOnce(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "nested", "data.json")
	t.Setenv("DATA_FILE", dataFile)

	out := &bytes.Buffer{}
	cmd := NewInitCommand()
	cmd.SetOut(out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "created")

	raw, err := os.ReadFile(dataFile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"holidays":[],"paymentDues":{},"keyInfo":[],"facultyPosts":{}}`, string(raw))

	out.Reset()
	again := NewInitCommand()
	again.SetOut(out)
	again.SetArgs([]string{})
	require.NoError(t, again.Execute())
	assert.Contains(t, out.String(), "already exists")
}

func TestLoadLocationFallsBackToUTC(t *testing.T) {
	logr := zap.NewNop()
	assert.Equal(t, time.UTC, loadLocation("", logr))
	assert.Equal(t, time.UTC, loadLocation("Mars/Olympus_Mons", logr))
	assert.Equal(t, "Asia/Kolkata", loadLocation("Asia/Kolkata", logr).String())
}
