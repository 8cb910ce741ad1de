package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Init使用sync.Once，全部断言放在一个测试里
func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
server:
  port: 9090
  mode: production

machine:
  vend_pins: "17,27"
  stocked_pins: "5,6"
  cam_pins: "23"
  latch_pin: "4"
  drop_delay: 750ms
  mock_mode: true

log:
  level: debug
  output: stdout
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, Init(path))

	cfg := Get()
	require.NotNil(t, cfg)

	// 文件里写的值
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Mode)
	assert.Equal(t, "17,27", cfg.Machine.VendPins)
	assert.Equal(t, "5,6", cfg.Machine.StockedPins)
	assert.Equal(t, "23", cfg.Machine.CamPins)
	assert.Equal(t, "4", cfg.Machine.LatchPin)
	assert.Equal(t, 750*time.Millisecond, cfg.Machine.DropDelay)
	assert.True(t, cfg.Machine.MockMode)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 文件没写的值回退到默认
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/mnt/w1", cfg.Machine.W1Mount)
	assert.Empty(t, cfg.Machine.SlotAddresses)
	assert.False(t, cfg.Machine.ActiveLow)
	assert.Equal(t, "vend-machine.log", cfg.Log.File.Filename)

	// 重复Init是幂等的
	require.NoError(t, Init(filepath.Join(dir, "other.yaml")))
	assert.Same(t, cfg, Get())
}
