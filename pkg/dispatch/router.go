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

// Package dispatch resolve o parâmetro "method" de uma chamada RPC para o handler registrado.
package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/raywall/fake-ubersmith/pkg/metrics"
	"github.com/raywall/fake-ubersmith/pkg/rules"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Métodos de controle, registrados como handlers comuns mas sempre despacháveis
// (inclusive em crash mode) e isentos de falhas injetadas.
const (
	MethodEnableCrashMode  = "hidden.enable_crash_mode"
	MethodDisableCrashMode = "hidden.disable_crash_mode"
)

// Resultado de um despacho, usado em logs, métricas e spans.
const (
	OutcomeOK        = "ok"
	OutcomeSoftError = "soft_error"
	OutcomeFatal     = "fatal"
)

// Params são os parâmetros planos de uma chamada (sem o "method").
type Params map[string]string

// Clone devolve uma cópia independente dos parâmetros.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Handler executa um método. Erros devolvidos são fatais; falhas de negócio vão no Response.
type Handler func(ctx context.Context, params Params) (envelope.Response, error)

// Router guarda a tabela nome -> handler e o estado do crash mode.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	crash    bool

	// lock serializa a execução dos handlers (o Store).
	lock      sync.Locker
	faults    *rules.FaultSet
	provider  metrics.Provider
	processor *metrics.Processor
	recorder  *Recorder
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// Option customiza o Router.
type Option func(*Router)

// WithLocker define o lock que serializa os handlers.
func WithLocker(l sync.Locker) Option {
	return func(r *Router) { r.lock = l }
}

// WithFaults habilita a injeção de falhas configurada.
func WithFaults(fs *rules.FaultSet) Option {
	return func(r *Router) { r.faults = fs }
}

// WithMetrics define o provider das métricas embutidas e o processador das customizadas.
func WithMetrics(p metrics.Provider, proc *metrics.Processor) Option {
	return func(r *Router) {
		r.provider = p
		r.processor = proc
	}
}

// WithRecorder registra todas as chamadas recebidas.
func WithRecorder(rec *Recorder) Option {
	return func(r *Router) { r.recorder = rec }
}

// WithLogger define o logger base do componente.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// NewRouter cria um Router contendo apenas os toggles de crash mode.
// Sem WithLogger o componente não loga nada.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		handlers: make(map[string]Handler),
		lock:     &sync.Mutex{},
		tracer:   otel.Tracer("github.com/raywall/fake-ubersmith/pkg/dispatch"),
		logger:   zerolog.Nop(),
	}
	r.handlers[MethodEnableCrashMode] = r.enableCrashMode
	r.handlers[MethodDisableCrashMode] = r.disableCrashMode

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register associa o nome ao handler. Um registro posterior com o mesmo nome vence.
func (r *Router) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Methods lista os métodos registrados, em ordem alfabética.
func (r *Router) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CrashMode indica se o crash mode está ativo.
func (r *Router) CrashMode() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.crash
}

// Recorder devolve o registro de chamadas (pode ser nil).
func (r *Router) Recorder() *Recorder {
	return r.recorder
}

// Dispatch executa o método informado.
func (r *Router) Dispatch(ctx context.Context, method string, params Params) (resp envelope.Response, err error) {
	ctx, span := r.tracer.Start(ctx, "ubersmith.dispatch", trace.WithAttributes(
		attribute.String("ubersmith.method", method),
	))
	start := time.Now()
	logger := r.loggerFor(ctx)

	defer func() {
		outcome := outcomeOf(resp, err)
		span.SetAttributes(attribute.String("ubersmith.outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		r.observe(method, params, outcome, resp, time.Since(start))
	}()

	r.recorder.Add(Call{Method: method, Params: params.Clone(), At: time.Now()})
	logger.Debug().Str("method", method).Interface("params", params).Msg("Will call method")

	control := isControl(method)
	if !control && r.CrashMode() {
		logger.Info().Str("method", method).Msg("Refusing call, crash mode is enabled")
		return envelope.Response{}, &FatalError{Method: method, Err: ErrCrashMode}
	}

	r.mu.RLock()
	h, ok := r.handlers[method]
	r.mu.RUnlock()
	if !ok {
		return envelope.Response{}, &FatalError{Method: method, Err: ErrUnknownMethod}
	}

	if f := r.matchFault(control, method, params); f != nil {
		logger.Info().Str("method", method).Str("fault", f.ID).Msg("Injecting fault")
		if f.Fatal {
			return envelope.Response{}, &FatalError{Method: method, Err: fmt.Errorf("%w: %s", ErrInternal, f.Message)}
		}
		return envelope.Error(f.Code, f.Message), nil
	}

	resp, err = r.invoke(ctx, method, h, params)
	if err != nil {
		logger.Error().Err(err).Str("method", method).Msg("Handler failed")
	}
	return resp, err
}

func (r *Router) matchFault(control bool, method string, params Params) *rules.Fault {
	if control {
		return nil
	}
	return r.faults.Match(method, params)
}

func (r *Router) enableCrashMode(ctx context.Context, _ Params) (envelope.Response, error) {
	r.setCrash(true)
	r.loggerFor(ctx).Info().Msg("Crash mode enabled")
	return envelope.Success("Crash Mode Enabled"), nil
}

func (r *Router) disableCrashMode(ctx context.Context, _ Params) (envelope.Response, error) {
	r.setCrash(false)
	r.loggerFor(ctx).Info().Msg("Crash mode disabled")
	return envelope.Success("Crash Mode Disabled"), nil
}

// loggerFor prefere o logger da requisição (com correlation_id) ao do componente.
func (r *Router) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := log.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &r.logger
}

func isControl(method string) bool {
	return method == MethodEnableCrashMode || method == MethodDisableCrashMode
}

// invoke executa o handler segurando o lock do Store; panics viram ErrInternal.
func (r *Router) invoke(ctx context.Context, method string, h Handler, params Params) (resp envelope.Response, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			resp = envelope.Response{}
			err = &FatalError{Method: method, Err: fmt.Errorf("%w: panic: %v", ErrInternal, rec)}
		}
	}()

	if params == nil {
		params = Params{}
	}
	resp, err = h(ctx, params)
	if err != nil {
		return envelope.Response{}, &FatalError{Method: method, Err: err}
	}
	return resp, nil
}

func (r *Router) setCrash(on bool) {
	r.mu.Lock()
	r.crash = on
	r.mu.Unlock()

	if r.provider != nil {
		val := 0.0
		if on {
			val = 1
		}
		_ = r.provider.Gauge(metrics.DispatchCrashMode, val, nil)
	}
}

func (r *Router) observe(method string, params Params, outcome string, resp envelope.Response, elapsed time.Duration) {
	if r.provider != nil {
		tags := []string{"method:" + method, "outcome:" + outcome}
		_ = r.provider.Count(metrics.DispatchCalls, 1, tags)
		_ = r.provider.Histogram(metrics.DispatchLatency, float64(elapsed.Milliseconds()), tags)
	}

	code := 0
	if resp.ErrorCode != nil {
		code = *resp.ErrorCode
	}
	if err := r.processor.Observe(method, params, outcome, code); err != nil {
		r.logger.Warn().Err(err).Str("method", method).Msg("Custom metric failed")
	}
}

func outcomeOf(resp envelope.Response, err error) string {
	switch {
	case err != nil:
		return OutcomeFatal
	case resp.Failed():
		return OutcomeSoftError
	default:
		return OutcomeOK
	}
}
