package config

import (
	"testing"

	"github.com/raywall/fake-ubersmith/pkg/emulator"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/stretchr/testify/assert"
)

func TestValidator_Validate(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		mutate  func(cfg *ServiceConfig)
		wantErr string
	}{
		{
			name:   "Valid Default Config",
			mutate: func(cfg *ServiceConfig) {},
		},
		{
			name:    "Runtime desconhecido",
			mutate:  func(cfg *ServiceConfig) { cfg.Service.Runtime = "mainframe" },
			wantErr: "Runtime",
		},
		{
			name:    "Rota sem barra final",
			mutate:  func(cfg *ServiceConfig) { cfg.Service.Route = "/api/2.0" },
			wantErr: "Route",
		},
		{
			name: "Lambda dispensa porta",
			mutate: func(cfg *ServiceConfig) {
				cfg.Service.Runtime = "lambda"
				cfg.Service.Port = 0
			},
		},
		{
			name: "Fault ID duplicado",
			mutate: func(cfg *ServiceConfig) {
				cfg.Faults = []FaultRule{
					{ID: "a", When: "true", Message: "x"},
					{ID: "a", When: "false", Message: "y"},
				}
			},
			wantErr: "fault ID duplicado",
		},
		{
			name: "Rota do emulador em conflito",
			mutate: func(cfg *ServiceConfig) {
				cfg.Emulator.Routes = append(cfg.Emulator.Routes, emulator.RouteConfig{
					Path:     "/status",
					Method:   "GET",
					Response: &emulator.Response{Status: 200},
				})
			},
			wantErr: "conflita",
		},
		{
			name: "Métrica sem definição",
			mutate: func(cfg *ServiceConfig) {
				cfg.Service.Metrics.Rules = []MetricRegistrationRule{{MetricID: "ghost", Value: "1"}}
			},
			wantErr: "métrica não definida",
		},
		{
			name: "Simulação de erro sem mensagem",
			mutate: func(cfg *ServiceConfig) {
				out := envelope.Fail(1, "")
				cfg.Simulations.CreditCard = &out
			},
			wantErr: "credit_card",
		},
		{
			name: "SQL sem DSN",
			mutate: func(cfg *ServiceConfig) {
				cfg.Fixtures.SQL = SQLSourceConf{Driver: "postgres", Query: "SELECT 1"}
			},
			wantErr: "DSN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := validator.Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FAKE_UBERSMITH_LOG_LEVEL", "debug")
	t.Setenv("FAKE_UBERSMITH_FIXTURES_SOURCE", "s3://bucket/fixtures.yaml")
	t.Setenv("FAKE_UBERSMITH_GRAPHQL_ENABLED", "false")

	cfg := Default()
	assert.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, "debug", cfg.Service.Logging.Level)
	assert.Equal(t, "s3://bucket/fixtures.yaml", cfg.Fixtures.Source)
	assert.False(t, cfg.GraphQL.Enabled)
	assert.Equal(t, 9131, cfg.Service.Port)
}

func TestServiceDetails_GetTimeout(t *testing.T) {
	assert.Equal(t, "2s", ServiceDetails{Timeout: "2s"}.GetTimeout().String())
	assert.Equal(t, "30s", ServiceDetails{Timeout: "nope"}.GetTimeout().String())
}
