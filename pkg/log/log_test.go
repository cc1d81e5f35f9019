package log

import (
	"os"
	"path/filepath"
	"qa-board-go/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_WritesToFile(t *testing.T) {
	t.Cleanup(func() {
		base = zap.NewNop()
		sugar = base.Sugar()
	})
	dir := filepath.Join(t.TempDir(), "logs")

	require.NoError(t, Init(config.LogConfig{Level: "not-a-level", Format: "json", OutputPath: dir}))
	Infow("question posted", "questionId", 1)
	With("component", "test").Debugw("dropped below info")
	Sync()

	b, err := os.ReadFile(filepath.Join(dir, "qa-board.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "question posted")
	assert.NotContains(t, string(b), "dropped below info")
}

func TestNopBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("nop")
		With("k", "v").Info("nop")
	})
}
