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

// Package envelope monta o corpo de resposta padrão da API Ubersmith:
// {"status", "error_code", "error_message", "data"}.
package envelope

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// VendorError é o par (código, mensagem) que o Ubersmith devolve em erros de negócio.
type VendorError struct {
	Code    int    `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("ubersmith error %d: %s", e.Code, e.Message)
}

// Outcome é o resultado armazenado de uma operação simulada: ou um payload, ou um erro do vendor.
// Usado por fixtures de pedidos, cartões e planos.
type Outcome struct {
	Data any          `json:"data,omitempty" yaml:"data"`
	Err  *VendorError `json:"error,omitempty" yaml:"error"`
}

// Ok cria um Outcome de sucesso.
func Ok(data any) Outcome {
	return Outcome{Data: data}
}

// Fail cria um Outcome de erro.
func Fail(code int, message string) Outcome {
	return Outcome{Err: &VendorError{Code: code, Message: message}}
}

// Failed indica se o Outcome representa um erro.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Response converte o Outcome no resultado de um handler.
func (o Outcome) Response() Response {
	if o.Err != nil {
		return Error(o.Err.Code, o.Err.Message)
	}
	return Success(o.Data)
}

// Response é o resultado de negócio de um handler, antes da serialização.
type Response struct {
	Data         any
	ErrorCode    *int
	ErrorMessage string
}

// Success cria uma resposta de sucesso com o payload informado.
func Success(data any) Response {
	return Response{Data: data}
}

// Error cria uma resposta de erro "soft" (HTTP 200, status false).
// O campo data fica como string vazia, igual ao serviço real.
func Error(code int, message string) Response {
	c := code
	return Response{Data: "", ErrorCode: &c, ErrorMessage: message}
}

// Failed indica se a resposta carrega um código de erro.
func (r Response) Failed() bool {
	return r.ErrorCode != nil
}

// Envelope é a forma serializada da resposta.
type Envelope struct {
	Status       bool   `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Data         any    `json:"data"`
}

// Envelope aplica a normalização e devolve o corpo pronto para serializar.
func (r Response) Envelope() Envelope {
	return Envelope{
		Status:       r.ErrorCode == nil,
		ErrorCode:    r.ErrorCode,
		ErrorMessage: r.ErrorMessage,
		Data:         Normalize(r.Data),
	}
}

func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Envelope())
}

// Normalize troca recursivamente todo mapa vazio por uma lista vazia.
// Mapas com chaves não-string têm as chaves convertidas com fmt.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, int, int64, float64, json.Number:
		return v
	case map[string]any:
		if len(t) == 0 {
			return []any{}
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Len() == 0 {
			return []any{}
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	}
	return v
}
