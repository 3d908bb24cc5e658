package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"treasurehunt/pkg/common"
	"treasurehunt/pkg/core"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`     // HTTP Listen Address (e.g. :8080)
	TCPAddr string `yaml:"tcp_addr"` // TCP Listen Address (e.g. :9090)
	// MaxRegions 限制远程请求的区域数，地图按区域数分配内存
	MaxRegions int `yaml:"max_regions"`
}

type StorageConfig struct {
	Path    string `yaml:"path"`    // 运行历史目录，空表示不持久化
	Journal string `yaml:"journal"` // 通知日志文件，空表示不写
}

// SearchConfig 是命令行未给出参数时使用的默认搜索参数
type SearchConfig struct {
	Regions   int   `yaml:"regions"`
	Groups    int   `yaml:"groups"`
	Treasures int   `yaml:"treasures"`
	Seed      int64 `yaml:"seed"`
	Notify    bool  `yaml:"notify"` // 是否逐区域输出搜索通知
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultMaxRegions is the region cap applied to hunts requested over the network.
const DefaultMaxRegions = 1 << 24

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       ":8080",
			TCPAddr:    ":9090",
			MaxRegions: DefaultMaxRegions,
		},
		Storage: StorageConfig{
			Path: "treasure_data",
		},
		Search: SearchConfig{
			Regions:   10,
			Groups:    3,
			Treasures: 3,
			Notify:    true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if configPath == "" {
		for _, p := range []string{"configs/treasurehunt.yaml", "treasurehunt.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, err
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		applyDefaults(cfg)
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.TCPAddr == "" {
		cfg.Server.TCPAddr = ":9090"
	}
	if cfg.Server.MaxRegions <= 0 {
		cfg.Server.MaxRegions = DefaultMaxRegions
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// Params 返回配置中的搜索参数
func (c *Config) Params() common.HuntParams {
	return common.HuntParams{
		Regions:   c.Search.Regions,
		Groups:    c.Search.Groups,
		Treasures: c.Search.Treasures,
		Seed:      c.Search.Seed,
	}
}

// Validate checks the search section against the same bounds the CLI applies.
func (c *Config) Validate() error {
	return core.Validate(c.Search.Regions, c.Search.Groups, c.Search.Treasures)
}
