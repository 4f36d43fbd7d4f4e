package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ApplyEnv sobrescreve campos da configuração com variáveis de ambiente.
// Ex: FAKE_UBERSMITH_PORT, FAKE_UBERSMITH_LOG_LEVEL, FAKE_UBERSMITH_FIXTURES_SOURCE.
func ApplyEnv(cfg *ServiceConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
