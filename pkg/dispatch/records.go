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
	"sync"
	"time"
)

// Call é o registro de uma chamada despachada.
type Call struct {
	Method string    `json:"method"`
	Params Params    `json:"params"`
	At     time.Time `json:"at"`
}

// Recorder guarda as últimas chamadas recebidas (buffer limitado).
type Recorder struct {
	mu    sync.Mutex
	limit int
	calls []Call
}

// NewRecorder cria um Recorder. limit <= 0 desliga o registro.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) Add(c Call) {
	if r == nil || r.limit <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if len(r.calls) > r.limit {
		r.calls = r.calls[len(r.calls)-r.limit:]
	}
}

// Calls devolve uma cópia das chamadas na ordem de chegada.
func (r *Recorder) Calls() []Call {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// ByMethod agrupa as chamadas pelo nome do método.
func (r *Recorder) ByMethod() map[string][]Call {
	out := make(map[string][]Call)
	for _, c := range r.Calls() {
		out[c.Method] = append(out[c.Method], c)
	}
	return out
}

func (r *Recorder) Reset() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
