package repository

import "github.com/dinerozz/nudge-engine/config"

func testConfig(driver string) *config.Config {
	return &config.Config{Storage: config.StorageConfig{Driver: driver}}
}
