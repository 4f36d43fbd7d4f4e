// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import "fmt"

// Record é um registro livre (cliente, contato, cartão, cupom...).
// O Ubersmith aceita campos arbitrários, então guardamos o que foi enviado.
type Record map[string]any

// Str devolve o campo como string ("" quando ausente ou nulo).
func (r Record) Str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Has indica se o campo existe no registro.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Clone faz uma cópia profunda de mapas e listas aninhados.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Record:
		return t.Clone()
	case map[string]any:
		return map[string]any(Record(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// FromParams copia parâmetros de formulário para um novo registro.
func FromParams(params map[string]string) Record {
	out := make(Record, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
