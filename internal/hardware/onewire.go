package hardware

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/wfunc/vend-machine/internal/errors"
)

// OneWireBus 一线总线的文件系统视图
//
// 每个设备属性都是挂载点下的一个可读写路径：
//   - 在位检测：<root>/<id>/id 是否存在
//   - 电机通断：向 <root>/<id>/PIO 写 "1"/"0"
//   - 温度：读 <root>/<id>/temperature12
type OneWireBus struct {
	fs   afero.Fs
	root string
}

// NewOneWireBus 创建指向真实挂载点的一线总线
func NewOneWireBus(root string) *OneWireBus {
	return &OneWireBus{fs: afero.NewOsFs(), root: root}
}

// NewMemOneWireBus 创建内存一线总线（调试模式与测试用）
func NewMemOneWireBus(root string) *OneWireBus {
	return &OneWireBus{fs: afero.NewMemMapFs(), root: root}
}

// Fs 总线后端文件系统（调试模式下预置设备用）
func (b *OneWireBus) Fs() afero.Fs {
	return b.fs
}

// WritePIO 写设备的PIO属性，控制电机通断
func (b *OneWireBus) WritePIO(id string, energize bool) error {
	state := "0"
	if energize {
		state = "1"
	}

	path := filepath.Join(b.root, id, "PIO")
	if err := afero.WriteFile(b.fs, path, []byte(state), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrLineIO, "写PIO失败: %s", path)
	}
	return nil
}

// DevicePresent 设备是否在总线上（即货道是否有货）
func (b *OneWireBus) DevicePresent(id string) bool {
	exists, err := afero.Exists(b.fs, filepath.Join(b.root, id, "id"))
	return err == nil && exists
}

// ReadTemperature 读温度传感器，返回传感器原生单位（摄氏度）
func (b *OneWireBus) ReadTemperature(id string) (float64, error) {
	path := filepath.Join(b.root, id, "temperature12")

	data, err := afero.ReadFile(b.fs, path)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrTemperature, "传感器不存在: %s", path)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrTemperature, "传感器读数无法解析: %s", path)
	}
	return value, nil
}
