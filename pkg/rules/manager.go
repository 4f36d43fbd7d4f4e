package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// RuleManager gerencia a compilação e avaliação de expressões CEL.
//
// Variáveis disponíveis nas expressões:
//   - method:  nome do método Ubersmith despachado
//   - params:  parâmetros do formulário (map de string)
//   - outcome: "ok", "soft_error" ou "fatal" (apenas após o handler)
//   - code:    código de erro do envelope (0 quando sucesso)
type RuleManager struct {
	env *cel.Env
}

// NewRuleManager inicializa o ambiente CEL com as variáveis do despacho.
func NewRuleManager() (*RuleManager, error) {
	env, err := cel.NewEnv(
		cel.Variable("method", cel.StringType),
		cel.Variable("params", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("outcome", cel.StringType),
		cel.Variable("code", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("erro fatal CEL init: %w", err)
	}

	return &RuleManager{env: env}, nil
}

// Activation monta o mapa de variáveis de uma avaliação.
func Activation(method string, params map[string]string, outcome string, code int) map[string]interface{} {
	if params == nil {
		params = map[string]string{}
	}
	return map[string]interface{}{
		"method":  method,
		"params":  params,
		"outcome": outcome,
		"code":    code,
	}
}

// EvaluateBool processa regras booleanas (deve retornar true/false).
func (rm *RuleManager) EvaluateBool(expression string, vars map[string]interface{}) (bool, error) {
	if expression == "" {
		return true, nil // Expressão vazia = aprova
	}

	prg, err := rm.CompileProgram(expression)
	if err != nil {
		return false, err
	}
	return EvalBool(prg, vars)
}

// EvaluateValue processa expressões de valor (retorna um valor dinâmico).
func (rm *RuleManager) EvaluateValue(expression string, vars map[string]interface{}) (interface{}, error) {
	if expression == "" {
		return nil, nil
	}

	prg, err := rm.CompileProgram(expression)
	if err != nil {
		return nil, err
	}

	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, fmt.Errorf("erro execução CEL: %w", err)
	}

	return out.Value(), nil
}

// CompileProgram expõe a compilação do CEL.
func (rm *RuleManager) CompileProgram(expr string) (cel.Program, error) {
	ast, issues := rm.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("erro de compilação CEL '%s': %w", expr, issues.Err())
	}
	prg, err := rm.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar programa CEL: %w", err)
	}
	return prg, nil
}

// EvalBool executa um programa já compilado e exige resultado booleano.
func EvalBool(prg cel.Program, vars map[string]interface{}) (bool, error) {
	out, _, err := prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("erro execução CEL: %w", err)
	}
	val, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("resultado não é booleano")
	}
	return val, nil
}
