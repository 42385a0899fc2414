// Package app assembles the water delivery bot from its parts.
package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/aquabot/core/config"
	"github.com/m3rciful/aquabot/core/database"
)

// DefaultBottlePrice applies to customers without a personal override when
// the config does not set one.
const DefaultBottlePrice = 150

// DeliveryConfig holds the domain settings of the water business.
type DeliveryConfig struct {
	// OrdersChannelID is the broadcast channel for new order cards; 0 disables it.
	OrdersChannelID    int64 `yaml:"orders_channel_id" envconfig:"ORDERS_CHANNEL_ID"`
	DefaultBottlePrice int   `yaml:"default_bottle_price" envconfig:"DEFAULT_BOTTLE_PRICE"`
}

// Config is the full configuration of the bot.
type Config struct {
	Core     coreconfig.Config `yaml:",inline"`
	Database database.Config   `yaml:"database"`
	Delivery DeliveryConfig    `yaml:"delivery"`
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// LoadConfig reads the YAML file, applies environment overrides, and validates.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if len(cfg.Core.Telegram.AdminIDs) == 0 {
		return nil, fmt.Errorf("telegram.admin_ids must list at least one admin")
	}
	if cfg.Delivery.DefaultBottlePrice == 0 {
		cfg.Delivery.DefaultBottlePrice = DefaultBottlePrice
	}
	if cfg.Delivery.DefaultBottlePrice < 0 {
		return nil, fmt.Errorf("delivery.default_bottle_price must be positive")
	}
	return &cfg, nil
}
