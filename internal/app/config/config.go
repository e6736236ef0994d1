package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // 精简系统可能缺少时区数据

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/scott012/EPG-Viewer/internal/app/epg"
	"github.com/scott012/EPG-Viewer/internal/pkg/logging"
)

const (
	DefaultFileName = "config.yml"

	DefaultTimezone        = "America/Vancouver"
	DefaultRefreshInterval = 24 * time.Hour
	DefaultSlotWidth       = 24

	minSlotWidth = 4
)

var ErrEmptySource = errors.New("listing source is empty")

type HTTPConfig struct {
	Port    int           `json:"port" yaml:"port"`       // HTTP服务的监听端口
	Timeout time.Duration `json:"timeout" yaml:"timeout"` // 请求节目单的超时时间
}

type Config struct {
	Source   string         `json:"source" yaml:"source"`     // 必填，XMLTV节目单的地址或本地文件路径
	Timezone string         `json:"timezone" yaml:"timezone"` // 显示时区，IANA名称
	Location *time.Location `json:"-" yaml:"-"`               // Validate()时进行填充

	RefreshInterval time.Duration `json:"refreshInterval" yaml:"refreshInterval"` // 自动刷新节目单的间隔时间
	NowInterval     time.Duration `json:"nowInterval" yaml:"nowInterval"`         // 当前时间标记的刷新间隔

	OptionOverlapPolicy string            `json:"overlapPolicy" yaml:"overlapPolicy"` // 同频道节目重叠时的处理策略：allow、report、clip
	OverlapPolicy       epg.OverlapPolicy `json:"-" yaml:"-"`                         // Validate()时进行填充

	SlotWidth int `json:"slotWidth" yaml:"slotWidth"` // 终端界面中每半小时占用的列数

	HTTP HTTPConfig        `json:"http" yaml:"http"`
	Log  logging.LogConfig `json:"log" yaml:"log"`
}

func (c *Config) Validate() error {
	// 校验config配置
	if c.Source == "" {
		return ErrEmptySource
	}

	// 填充显示时区
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc

	// L()：获取全局logger
	logger := zap.L()

	// 填充重叠策略
	policy, err := epg.ParseOverlapPolicy(c.OptionOverlapPolicy)
	if err != nil {
		logger.Warn("The overlap policy is incorrect. Use allow instead.", zap.String("overlapPolicy", c.OptionOverlapPolicy), zap.Error(err))
		policy = epg.OverlapAllow
	}
	c.OverlapPolicy = policy

	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.NowInterval <= 0 {
		c.NowInterval = epg.DefaultNowInterval
	}
	if c.SlotWidth < minSlotWidth {
		if c.SlotWidth != 0 {
			logger.Warn("The slot width is too small. Use the default instead.", zap.Int("slotWidth", c.SlotWidth))
		}
		c.SlotWidth = DefaultSlotWidth
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = 10 * time.Second
	}

	return nil
}

func Load(fPath string) (*Config, error) {
	// 读取配置文件
	data, err := os.ReadFile(fPath)
	if err != nil {
		return nil, err
	}
	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultPath 获取当前执行程序所在目录下的配置文件路径
func DefaultPath() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", err
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(exePath))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultFileName), nil
}

func Default() Config {
	return Config{
		Source:              "http://127.0.0.1:8080/epg.xml",
		Timezone:            DefaultTimezone,
		RefreshInterval:     DefaultRefreshInterval,
		NowInterval:         epg.DefaultNowInterval,
		OptionOverlapPolicy: string(epg.OverlapAllow),
		SlotWidth:           DefaultSlotWidth,
		HTTP: HTTPConfig{
			Port:    8080,
			Timeout: 10 * time.Second,
		},
		Log: logging.LogConfig{
			Level:      zapcore.InfoLevel,
			FileName:   "epg.log",
			MaxSize:    10,
			MaxAge:     7,
			MaxBackups: 3,
		},
	}
}

func CreateDefaultCfg(fPath string) error {
	// 写入默认配置
	f, err := os.Create(fPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// 创建编码器
	encoder := yaml.NewEncoder(f)
	defer encoder.Close()

	// 缺省配置
	defaultCfg := Default()

	return encoder.Encode(&defaultCfg)
}
