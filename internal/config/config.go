package config

import (
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Machine MachineConfig `mapstructure:"machine"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MachineConfig 整机硬件配置
//
// 货道寻址分两种模式：
//   - 一线总线模式：slot_addresses 为逗号分隔的设备地址列表，
//     出货、余货、确认全部走文件系统路径；
//   - GPIO模式：vend_pins/stocked_pins 为平行的逗号分隔引脚列表，
//     cam_pins 可选（旋转传感器），每项格式 "<线偏移>[:<芯片编号>]"。
//
// 两种模式互斥，slot_addresses 非空时优先。
type MachineConfig struct {
	SlotAddresses string        `mapstructure:"slot_addresses"` // 一线总线设备地址列表
	VendPins      string        `mapstructure:"vend_pins"`      // 出货电机输出引脚列表
	StockedPins   string        `mapstructure:"stocked_pins"`   // 余货检测输入引脚列表
	CamPins       string        `mapstructure:"cam_pins"`       // 旋转传感器引脚列表（可选）
	ActiveLow     bool          `mapstructure:"active_low"`     // 余货输入低电平有效
	LatchPin      string        `mapstructure:"latch_pin"`      // 共享门锁输出引脚（空=无门锁）
	TempAddress   string        `mapstructure:"temp_address"`   // 温度传感器一线地址
	DropDelay     time.Duration `mapstructure:"drop_delay"`     // 无传感器确认时的固定出货保持时长
	W1Mount       string        `mapstructure:"w1_mount"`       // 一线总线文件系统挂载点
	MockMode      bool          `mapstructure:"mock_mode"`      // 调试模式（使用模拟IO线）
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	Output string        `mapstructure:"output"`
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		v = viper.New()

		// 设置配置文件路径
		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath("./config")
			v.AddConfigPath(".")
		}

		// 设置环境变量前缀
		v.SetEnvPrefix("VEND")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		// 设置默认值
		setDefaults(v)

		// 读取配置文件
		if err = v.ReadInConfig(); err != nil {
			// 如果配置文件不存在，使用默认配置
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				err = nil
			} else {
				return
			}
		}

		// 解析配置到结构体
		cfg = &Config{}
		err = v.Unmarshal(cfg)
	})

	return err
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// 硬件默认配置
	v.SetDefault("machine.slot_addresses", "")
	v.SetDefault("machine.vend_pins", "")
	v.SetDefault("machine.stocked_pins", "")
	v.SetDefault("machine.cam_pins", "")
	v.SetDefault("machine.active_low", false)
	v.SetDefault("machine.latch_pin", "")
	v.SetDefault("machine.temp_address", "")
	v.SetDefault("machine.drop_delay", "500ms")
	v.SetDefault("machine.w1_mount", "/mnt/w1")
	v.SetDefault("machine.mock_mode", false)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "both")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "vend-machine.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
//
// 硬件寻址只在进程启动时解析一次，热更新只对日志等软配置生效。
func Watch(callback func(*Config)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		defer mu.Unlock()

		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			return
		}

		cfg = newCfg

		if callback != nil {
			callback(newCfg)
		}
	})
}
