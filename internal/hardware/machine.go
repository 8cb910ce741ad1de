package hardware

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wfunc/vend-machine/internal/config"
	"github.com/wfunc/vend-machine/internal/errors"
	"github.com/wfunc/vend-machine/internal/logger"
	"go.uber.org/zap"
)

// Machine 整机硬件视图
//
// 启动时从配置构建一次，进程生命周期内只读。
type Machine struct {
	Slots     []*Slot
	Latch     *Latch // 共享门锁，nil表示没有
	Bus       *OneWireBus
	TempID    string
	DropDelay time.Duration
}

// Temperature 读取机内温度（传感器原生单位，摄氏度）
//
// 读取失败只记日志并返回0，不向外冒错。
func (m *Machine) Temperature() float64 {
	if m.TempID == "" {
		return 0
	}

	value, err := m.Bus.ReadTemperature(m.TempID)
	if err != nil {
		logger.Error("温度传感器读取失败", zap.String("sensor", m.TempID), zap.Error(err))
		return 0
	}
	return value
}

// NewMachine 按配置构建整机硬件
//
// 一线总线地址列表与GPIO引脚列表两种寻址模式互斥，
// slot_addresses 非空时优先。
func NewMachine(cfg *config.MachineConfig, log *zap.Logger) (*Machine, error) {
	var bus *OneWireBus
	req := lineRequester(cdevRequester{})
	if cfg.MockMode {
		log.Warn("调试模式：使用模拟IO线与内存一线总线")
		bus = NewMemOneWireBus(cfg.W1Mount)
		req = mockRequester{}
	} else {
		bus = NewOneWireBus(cfg.W1Mount)
	}

	m := &Machine{
		Bus:       bus,
		TempID:    cfg.TempAddress,
		DropDelay: cfg.DropDelay,
	}

	if cfg.SlotAddresses != "" {
		for _, id := range splitList(cfg.SlotAddresses) {
			m.Slots = append(m.Slots, &Slot{Kind: SlotOneWire, DeviceID: id, Bus: bus})
		}
	} else {
		if cfg.VendPins == "" || cfg.StockedPins == "" {
			return nil, errors.New(errors.ErrConfigMissing,
				"machine.slot_addresses 与 machine.vend_pins/stocked_pins 至少要配置一种")
		}

		vendSpecs := splitList(cfg.VendPins)
		stockedSpecs := splitList(cfg.StockedPins)
		camSpecs := splitList(cfg.CamPins)
		if len(vendSpecs) != len(stockedSpecs) {
			return nil, errors.Newf(errors.ErrConfigParse,
				"vend_pins(%d) 与 stocked_pins(%d) 数量不一致", len(vendSpecs), len(stockedSpecs))
		}

		for i := range vendSpecs {
			vend, err := req.Output(vendSpecs[i], "vend-motor")
			if err != nil {
				return nil, err
			}
			stocked, err := req.Input(stockedSpecs[i], cfg.ActiveLow, "vend-stocked")
			if err != nil {
				return nil, err
			}

			var cam EdgeLine
			if i < len(camSpecs) {
				cam, err = req.Edge(camSpecs[i], "vend-cam")
				if err != nil {
					return nil, err
				}
			}

			m.Slots = append(m.Slots, &Slot{Kind: SlotGPIO, Vend: vend, Stocked: stocked, Cam: cam})
		}
	}

	if cfg.LatchPin != "" {
		line, err := req.Output(cfg.LatchPin, "vend-latch")
		if err != nil {
			return nil, err
		}
		m.Latch = NewLatch(line, log)
	}

	log.Info("整机硬件构建完成",
		zap.Int("slots", len(m.Slots)),
		zap.Bool("latch", m.Latch != nil),
		zap.Duration("drop_delay", m.DropDelay),
	)
	return m, nil
}

// splitList 拆逗号分隔列表，忽略空项
func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parsePinSpec 解析引脚定义 "<线偏移>[:<芯片编号>]"，芯片默认0
func parsePinSpec(spec string) (chip string, offset int, err error) {
	parts := strings.SplitN(spec, ":", 2)

	offset, perr := strconv.Atoi(strings.TrimSpace(parts[0]))
	if perr != nil {
		return "", 0, errors.Wrapf(perr, errors.ErrConfigParse, "无效的引脚定义: %q", spec)
	}

	chipIndex := 0
	if len(parts) == 2 {
		chipIndex, perr = strconv.Atoi(strings.TrimSpace(parts[1]))
		if perr != nil {
			return "", 0, errors.Wrapf(perr, errors.ErrConfigParse, "无效的芯片编号: %q", spec)
		}
	}

	return fmt.Sprintf("gpiochip%d", chipIndex), offset, nil
}

// lineRequester 按引脚定义申请IO线，调试模式下换成模拟实现
type lineRequester interface {
	Output(spec string, consumer string) (Line, error)
	Input(spec string, activeLow bool, consumer string) (Line, error)
	Edge(spec string, consumer string) (EdgeLine, error)
}

// cdevRequester 走GPIO字符设备
type cdevRequester struct{}

func (cdevRequester) Output(spec string, consumer string) (Line, error) {
	chip, offset, err := parsePinSpec(spec)
	if err != nil {
		return nil, err
	}
	return RequestOutputLine(chip, offset, consumer)
}

func (cdevRequester) Input(spec string, activeLow bool, consumer string) (Line, error) {
	chip, offset, err := parsePinSpec(spec)
	if err != nil {
		return nil, err
	}
	return RequestInputLine(chip, offset, activeLow, consumer)
}

func (cdevRequester) Edge(spec string, consumer string) (EdgeLine, error) {
	chip, offset, err := parsePinSpec(spec)
	if err != nil {
		return nil, err
	}
	return RequestEdgeLine(chip, offset, consumer)
}

// mockRequester 生成模拟IO线
type mockRequester struct{}

func (mockRequester) Output(spec string, consumer string) (Line, error) {
	_, offset, err := parsePinSpec(spec)
	if err != nil {
		return nil, err
	}
	return NewMockLine(offset), nil
}

func (mockRequester) Input(spec string, activeLow bool, consumer string) (Line, error) {
	_, offset, err := parsePinSpec(spec)
	if err != nil {
		return nil, err
	}
	line := NewMockLine(offset)
	line.SetReadValue(1) // 调试模式默认有货
	return line, nil
}

func (mockRequester) Edge(spec string, consumer string) (EdgeLine, error) {
	_, offset, err := parsePinSpec(spec)
	if err != nil {
		return nil, err
	}
	line := NewMockEdgeLine(offset)
	line.EnableAutoFire()
	return line, nil
}
