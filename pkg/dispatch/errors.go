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

package dispatch

import (
	"errors"
	"fmt"
)

// Erros fatais: nunca viram envelope, o transporte responde HTTP 500.
var (
	ErrUnknownMethod = errors.New("unknown method")
	ErrCrashMode     = errors.New("Crash mode was enabled")
	ErrInternal      = errors.New("internal error")
)

// FatalError identifica o método em que a falha fatal ocorreu.
type FatalError struct {
	Method string
	Err    error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal indica se o erro deve ser tratado como falha fatal de despacho.
// Todo erro devolvido por Dispatch é fatal; a função existe para quem recebe
// erros embrulhados por outras camadas.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// Internal embrulha uma falha de handler (ex.: registro referenciado inexistente).
func Internal(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}
