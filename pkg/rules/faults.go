package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/raywall/fake-ubersmith/pkg/config"
)

// Fault é uma falha simulada pronta para avaliação.
type Fault struct {
	ID      string
	Code    int
	Message string
	Fatal   bool

	program cel.Program
}

// FaultSet avalia, em ordem, as regras de falha configuradas.
type FaultSet struct {
	faults []Fault
}

// NewFaultSet compila todas as regras. Qualquer erro de compilação invalida o conjunto.
func NewFaultSet(rm *RuleManager, rules []config.FaultRule) (*FaultSet, error) {
	fs := &FaultSet{}
	for _, r := range rules {
		prg, err := rm.CompileProgram(r.When)
		if err != nil {
			return nil, fmt.Errorf("fault '%s': %w", r.ID, err)
		}
		fs.faults = append(fs.faults, Fault{
			ID:      r.ID,
			Code:    r.ErrorCode,
			Message: r.Message,
			Fatal:   r.Fatal,
			program: prg,
		})
	}
	return fs, nil
}

// Len devolve o número de regras.
func (fs *FaultSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.faults)
}

// Match devolve a primeira falha cuja condição é verdadeira para a chamada.
func (fs *FaultSet) Match(method string, params map[string]string) *Fault {
	if fs == nil {
		return nil
	}
	vars := Activation(method, params, "", 0)
	for i := range fs.faults {
		ok, err := EvalBool(fs.faults[i].program, vars)
		if err != nil {
			// params.x em chave ausente gera erro no CEL; tratamos como "não casou"
			continue
		}
		if ok {
			return &fs.faults[i]
		}
	}
	return nil
}
