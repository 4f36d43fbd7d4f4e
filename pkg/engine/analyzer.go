package engine

import (
	"fmt"

	"github.com/raywall/fake-ubersmith/pkg/config"
	"github.com/raywall/fake-ubersmith/pkg/rules"
)

// ValidationReport contém o resultado detalhado da análise.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Analyze realiza uma inspeção profunda na configuração: compila todas as
// expressões CEL e aponta combinações que não fazem sentido em runtime.
func Analyze(cfg *config.ServiceConfig) (*ValidationReport, error) {
	report := &ValidationReport{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	rm, err := rules.NewRuleManager()
	if err != nil {
		return nil, fmt.Errorf("falha interna ao iniciar analisador de regras: %w", err)
	}

	// 1. Regras de falha
	for _, f := range cfg.Faults {
		if _, err := rm.CompileProgram(f.When); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Faults[%s]: Erro de sintaxe CEL: %v", f.ID, err))
		}
		if f.Fatal && f.ErrorCode != 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Faults[%s]: error_code ignorado em falha fatal", f.ID))
		}
		if !f.Fatal && f.ErrorCode == 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Faults[%s]: falha soft sem error_code", f.ID))
		}
	}

	// 2. Métricas customizadas
	for _, r := range cfg.Service.Metrics.Rules {
		if r.When != "" {
			if _, err := rm.CompileProgram(r.When); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("Metrics.Rule[%s]: Erro na condição: %v", r.MetricID, err))
			}
		}
		if _, err := rm.CompileProgram(r.Value); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Metrics.Rule[%s]: Erro no valor: %v", r.MetricID, err))
		}
		for tag, expr := range r.Tags {
			if _, err := rm.CompileProgram(expr); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("Metrics.Rule[%s].Tag[%s]: Erro CEL: %v", r.MetricID, tag, err))
			}
		}
	}
	if len(cfg.Service.Metrics.Rules) > 0 && !cfg.Service.Metrics.Datadog.Enabled {
		report.Warnings = append(report.Warnings, "Métricas customizadas configuradas com Datadog desabilitado")
	}

	// 3. Fixtures
	fx := cfg.Fixtures
	if fx.LoadOnStart && fx.Source == "" && !fx.SQL.Enabled() {
		report.Errors = append(report.Errors, "Fixtures: load_on_start sem source nem sql")
	}
	if fx.SQSReloadQueue != "" && fx.Source == "" && !fx.SQL.Enabled() {
		report.Warnings = append(report.Warnings, "Fixtures: fila de reload configurada sem origem de fixtures")
	}

	// 4. Simulações
	if sim := cfg.Simulations.ServicePlanError; sim != nil && sim.Message == "" {
		report.Errors = append(report.Errors, "Simulations.service_plan_error sem mensagem")
	}

	if cfg.Service.Runtime == "lambda" && fx.SQSReloadQueue != "" {
		report.Warnings = append(report.Warnings, "Fixtures: reload via SQS é ignorado no runtime lambda")
	}

	if len(report.Errors) > 0 {
		report.Valid = false
	}

	return report, nil
}
