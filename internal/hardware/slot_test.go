package hardware

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/vend-machine/internal/errors"
)

// 测试货道对外显示标识
func TestSlotString(t *testing.T) {
	onewire := &Slot{Kind: SlotOneWire, DeviceID: "10.55D2DE020800"}
	assert.Equal(t, "10.55D2DE020800", onewire.String())

	gpio := &Slot{
		Kind:    SlotGPIO,
		Vend:    NewMockLine(17),
		Stocked: NewMockLine(5),
	}
	assert.Equal(t, "17.5", gpio.String())

	gpio.Cam = NewMockEdgeLine(23)
	assert.Equal(t, "17.5.23", gpio.String())
}

// 测试GPIO货道的电机通断
func TestSlotActuateGPIO(t *testing.T) {
	vend := NewMockLine(17)
	slot := &Slot{Kind: SlotGPIO, Vend: vend, Stocked: NewMockLine(5)}

	require.NoError(t, slot.Actuate(true))
	require.NoError(t, slot.Actuate(false))
	assert.Equal(t, []int{1, 0}, vend.WriteValues())
}

// 测试GPIO货道的余货检测
func TestSlotIsStockedGPIO(t *testing.T) {
	stocked := NewMockLine(5)
	slot := &Slot{Kind: SlotGPIO, Vend: NewMockLine(17), Stocked: stocked}

	assert.False(t, slot.IsStocked())

	stocked.SetReadValue(1)
	assert.True(t, slot.IsStocked())
}

// 测试一线总线货道的余货检测即设备在位
func TestSlotIsStockedOneWire(t *testing.T) {
	bus := NewMemOneWireBus("/mnt/w1")
	slot := &Slot{Kind: SlotOneWire, DeviceID: "10.ABC", Bus: bus}

	assert.False(t, slot.IsStocked())

	require.NoError(t, afero.WriteFile(bus.Fs(), "/mnt/w1/10.ABC/id", []byte("10.ABC"), 0644))
	assert.True(t, slot.IsStocked())
}

// 测试PIO写入的值与路径
func TestOneWireBusWritePIO(t *testing.T) {
	bus := NewMemOneWireBus("/mnt/w1")

	require.NoError(t, bus.WritePIO("10.ABC", true))
	data, err := afero.ReadFile(bus.Fs(), "/mnt/w1/10.ABC/PIO")
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))

	require.NoError(t, bus.WritePIO("10.ABC", false))
	data, err = afero.ReadFile(bus.Fs(), "/mnt/w1/10.ABC/PIO")
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))
}

// 测试温度读取
func TestOneWireBusReadTemperature(t *testing.T) {
	bus := NewMemOneWireBus("/mnt/w1")

	// 传感器不存在
	_, err := bus.ReadTemperature("28.FF001122")
	assert.True(t, apperrors.Is(err, apperrors.ErrTemperature))

	// 正常读数，末尾带换行
	require.NoError(t, afero.WriteFile(bus.Fs(), "/mnt/w1/28.FF001122/temperature12", []byte("4.25\n"), 0644))
	value, err := bus.ReadTemperature("28.FF001122")
	require.NoError(t, err)
	assert.Equal(t, 4.25, value)

	// 读数无法解析
	require.NoError(t, afero.WriteFile(bus.Fs(), "/mnt/w1/28.FF001122/temperature12", []byte("garbage"), 0644))
	_, err = bus.ReadTemperature("28.FF001122")
	assert.True(t, apperrors.Is(err, apperrors.ErrTemperature))
}
