package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *ServiceConfig) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica (Regras de negócio da configuração)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *ServiceConfig) error {
	// 1. Unicidade de IDs de falhas
	seenIDs := make(map[string]bool)
	for _, f := range cfg.Faults {
		if seenIDs[f.ID] {
			return fmt.Errorf("fault ID duplicado detectado: '%s'", f.ID)
		}
		seenIDs[f.ID] = true
	}

	// 2. Rotas do emulador não podem colidir entre si nem com as rotas internas
	reserved := map[string]bool{
		cfg.Service.Route: true,
		"/status":         true,
		"/__shutdown":     true,
		"/__records":      true,
		"/__flush":        true,
	}
	if cfg.GraphQL.Enabled {
		reserved[cfg.GraphQL.Route] = true
	}
	seenRoutes := make(map[string]bool)
	for _, r := range cfg.Emulator.Routes {
		key := strings.ToUpper(r.Method) + " " + r.Path
		if seenRoutes[key] {
			return fmt.Errorf("rota do emulador duplicada: '%s'", key)
		}
		if reserved[r.Path] {
			return fmt.Errorf("rota do emulador '%s' conflita com rota interna", r.Path)
		}
		seenRoutes[key] = true
	}

	// 3. Métricas customizadas precisam referenciar definições existentes
	defs := make(map[string]bool)
	for _, d := range cfg.Service.Metrics.Datadog.CustomDefinitions {
		defs[d.ID] = true
	}
	for _, r := range cfg.Service.Metrics.Rules {
		if !defs[r.MetricID] {
			return fmt.Errorf("métrica não definida: '%s'", r.MetricID)
		}
	}

	// 4. Simulações de erro precisam de mensagem
	if sim := cfg.Simulations.CreditCard; sim != nil && sim.Err != nil && sim.Err.Message == "" {
		return fmt.Errorf("simulations.credit_card.error sem mensagem")
	}
	if sim := cfg.Simulations.CreditCardDelete; sim != nil && sim.Err != nil && sim.Err.Message == "" {
		return fmt.Errorf("simulations.credit_card_delete.error sem mensagem")
	}

	return nil
}
