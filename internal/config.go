package internal

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/hndinh/tabstore/internal/storage"
)

type TabStoreConfig struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		Workdir  string `mapstructure:"workdir"`
		PageSize int    `mapstructure:"page_size"`
	} `mapstructure:"storage"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

func LoadConfig(path string) (*TabStoreConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("storage.page_size", storage.PageSize)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg TabStoreConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// The page layout is a fixed on-disk contract; a different size here
	// would silently misaddress every page in an existing table.
	if cfg.Storage.PageSize != storage.PageSize {
		return nil, fmt.Errorf("config: page_size must be %d, got %d", storage.PageSize, cfg.Storage.PageSize)
	}

	return &cfg, nil
}
