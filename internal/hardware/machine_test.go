package hardware

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/vend-machine/internal/config"
	apperrors "github.com/wfunc/vend-machine/internal/errors"
	"go.uber.org/zap"
)

// 测试引脚定义解析
func TestParsePinSpec(t *testing.T) {
	chip, offset, err := parsePinSpec("17")
	require.NoError(t, err)
	assert.Equal(t, "gpiochip0", chip)
	assert.Equal(t, 17, offset)

	chip, offset, err = parsePinSpec("17:1")
	require.NoError(t, err)
	assert.Equal(t, "gpiochip1", chip)
	assert.Equal(t, 17, offset)

	chip, offset, err = parsePinSpec(" 5 : 2 ")
	require.NoError(t, err)
	assert.Equal(t, "gpiochip2", chip)
	assert.Equal(t, 5, offset)

	_, _, err = parsePinSpec("abc")
	assert.True(t, apperrors.Is(err, apperrors.ErrConfigParse))

	_, _, err = parsePinSpec("17:x")
	assert.True(t, apperrors.Is(err, apperrors.ErrConfigParse))
}

// 测试调试模式下构建GPIO机器
func TestNewMachineMockGPIO(t *testing.T) {
	cfg := &config.MachineConfig{
		VendPins:    "17,27",
		StockedPins: "5,6",
		CamPins:     "23",
		DropDelay:   500 * time.Millisecond,
		W1Mount:     "/mnt/w1",
		MockMode:    true,
	}

	m, err := NewMachine(cfg, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, m.Slots, 2)

	assert.Equal(t, SlotGPIO, m.Slots[0].Kind)
	assert.NotNil(t, m.Slots[0].Cam, "第一条货道配了旋转传感器")
	assert.Nil(t, m.Slots[1].Cam, "旋转传感器可以少于货道数")
	assert.Equal(t, "17.5.23", m.Slots[0].String())
	assert.Equal(t, "27.6", m.Slots[1].String())
	assert.Nil(t, m.Latch)
	assert.Equal(t, 500*time.Millisecond, m.DropDelay)
}

// 测试门锁构建
func TestNewMachineWithLatch(t *testing.T) {
	cfg := &config.MachineConfig{
		VendPins:    "17",
		StockedPins: "5",
		LatchPin:    "4",
		W1Mount:     "/mnt/w1",
		MockMode:    true,
	}

	m, err := NewMachine(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, m.Latch)
	m.Latch.Close()
}

// 测试一线总线寻址优先于GPIO
func TestNewMachineOneWire(t *testing.T) {
	cfg := &config.MachineConfig{
		SlotAddresses: "10.55D2DE020800, 10.A2B3C4050800",
		VendPins:      "17", // 被忽略
		W1Mount:       "/mnt/w1",
		MockMode:      true,
	}

	m, err := NewMachine(cfg, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, m.Slots, 2)

	assert.Equal(t, SlotOneWire, m.Slots[0].Kind)
	assert.Equal(t, "10.55D2DE020800", m.Slots[0].DeviceID, "地址要去掉空白")
	assert.Equal(t, "10.A2B3C4050800", m.Slots[1].DeviceID)
}

// 测试寻址配置缺失
func TestNewMachineMissingAddressing(t *testing.T) {
	cfg := &config.MachineConfig{W1Mount: "/mnt/w1", MockMode: true}

	_, err := NewMachine(cfg, zap.NewNop())
	assert.True(t, apperrors.Is(err, apperrors.ErrConfigMissing))
}

// 测试引脚列表数量不一致
func TestNewMachineMismatchedPins(t *testing.T) {
	cfg := &config.MachineConfig{
		VendPins:    "17,27",
		StockedPins: "5",
		W1Mount:     "/mnt/w1",
		MockMode:    true,
	}

	_, err := NewMachine(cfg, zap.NewNop())
	assert.True(t, apperrors.Is(err, apperrors.ErrConfigParse))
}

// 测试温度读取经由整机视图
func TestMachineTemperature(t *testing.T) {
	bus := NewMemOneWireBus("/mnt/w1")
	require.NoError(t, afero.WriteFile(bus.Fs(), "/mnt/w1/28.FF001122/temperature12", []byte("12.5\n"), 0644))

	m := &Machine{Bus: bus, TempID: "28.FF001122"}
	assert.Equal(t, 12.5, m.Temperature())

	// 未配置传感器时返回0
	m.TempID = ""
	assert.Equal(t, 0.0, m.Temperature())

	// 传感器读取失败时返回0，不向外冒错
	m.TempID = "28.MISSING"
	assert.Equal(t, 0.0, m.Temperature())
}
