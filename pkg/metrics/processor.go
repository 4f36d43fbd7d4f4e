package metrics

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/raywall/fake-ubersmith/pkg/config"
	"github.com/raywall/fake-ubersmith/pkg/rules"
)

// Processor avalia as métricas customizadas a cada despacho.
type Processor struct {
	definitions map[string]MetricDefinition
	rules       []config.MetricRegistrationRule
	provider    Provider
	ruleManager *rules.RuleManager
}

// NewProcessor cria um processador linkando IDs de configuração aos seus tipos reais.
func NewProcessor(conf config.MetricsConf, provider Provider, rm *rules.RuleManager) *Processor {
	defs := make(map[string]MetricDefinition)
	for _, d := range conf.Datadog.CustomDefinitions {
		defs[d.ID] = MetricDefinition{
			Name: d.Name,
			Type: MetricType(d.Type),
		}
	}

	return &Processor{
		definitions: defs,
		rules:       conf.Rules,
		provider:    provider,
		ruleManager: rm,
	}
}

// Observe registra as métricas customizadas de uma chamada já concluída.
func (p *Processor) Observe(method string, params map[string]string, outcome string, code int) error {
	if p == nil || len(p.rules) == 0 {
		return nil
	}
	vars := rules.Activation(method, params, outcome, code)
	for _, rule := range p.rules {
		if err := p.processSingleRule(rule, vars); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) processSingleRule(rule config.MetricRegistrationRule, vars map[string]interface{}) error {
	// 1. Buscar definição da métrica (Nome e Tipo)
	def, exists := p.definitions[rule.MetricID]
	if !exists {
		return fmt.Errorf("métrica não definida: %s", rule.MetricID)
	}

	// 2. Condição opcional
	ok, err := p.ruleManager.EvaluateBool(rule.When, vars)
	if err != nil {
		return fmt.Errorf("erro ao avaliar condição da métrica %s: %w", rule.MetricID, err)
	}
	if !ok {
		return nil
	}

	// 3. Avaliar o Valor (CEL)
	rawVal, err := p.ruleManager.EvaluateValue(rule.Value, vars)
	if err != nil {
		return fmt.Errorf("erro ao avaliar valor da métrica %s: %w", rule.MetricID, err)
	}

	val, err := toFloat64(rawVal)
	if err != nil {
		return fmt.Errorf("valor da métrica %s inválido: %w", rule.MetricID, err)
	}

	// 4. Avaliar Tags (CEL), em ordem estável
	keys := make([]string, 0, len(rule.Tags))
	for k := range rule.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var finalTags []string
	for _, k := range keys {
		tagVal, err := p.ruleManager.EvaluateValue(rule.Tags[k], vars)
		if err != nil {
			return fmt.Errorf("erro ao avaliar tag %s da métrica %s: %w", k, rule.MetricID, err)
		}
		finalTags = append(finalTags, fmt.Sprintf("%s:%v", k, tagVal))
	}

	// 5. Enviar para o Provider
	switch def.Type {
	case TypeCount:
		return p.provider.Count(def.Name, val, finalTags)
	case TypeGauge:
		return p.provider.Gauge(def.Name, val, finalTags)
	case TypeHistogram:
		return p.provider.Histogram(def.Name, val, finalTags)
	default:
		return fmt.Errorf("tipo de métrica desconhecido: %s", def.Type)
	}
}

// Helper para converter retorno do CEL (int, int64, float64, string) para float64
func toFloat64(v interface{}) (float64, error) {
	switch i := v.(type) {
	case float64:
		return i, nil
	case float32:
		return float64(i), nil
	case int:
		return float64(i), nil
	case int64:
		return float64(i), nil
	case uint64:
		return float64(i), nil
	case bool:
		if i {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseFloat(i, 64)
	default:
		return 0, fmt.Errorf("tipo numérico não suportado: %T", v)
	}
}
