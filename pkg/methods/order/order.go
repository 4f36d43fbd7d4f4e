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

// Package order implementa os métodos order.* (cupons e o ciclo de pedidos).
// Os resultados de pedidos vêm das fixtures: cada id aponta para um Outcome.
package order

import (
	"context"

	"github.com/raywall/fake-ubersmith/pkg/dispatch"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/raywall/fake-ubersmith/pkg/store"
	"github.com/rs/zerolog/log"
)

// respondStatus é o valor devolvido por order.respond.
const respondStatus = 8

// Order agrupa os handlers order.* sobre um Store.
type Order struct {
	store *store.Store
}

// New cria o grupo sobre o Store informado.
func New(st *store.Store) *Order {
	return &Order{store: st}
}

// Hook registra os métodos order.* no Router.
func (o *Order) Hook(r *dispatch.Router) {
	r.Register("order.coupon_get", o.couponGet)
	r.Register("order.create", o.create)
	r.Register("order.respond", o.respond)
	r.Register("order.submit", o.submit)
	r.Register("order.cancel", o.cancel)
}

func (o *Order) couponGet(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	code := params["coupon_code"]
	for _, c := range o.store.Coupons {
		if couponCode(c) == code {
			log.Ctx(ctx).Info().Str("coupon_code", code).Msg("Retrieved coupon data")
			return envelope.Success(c.Clone()), nil
		}
	}
	log.Ctx(ctx).Info().Str("coupon_code", code).Msg("Getting coupon info failed")
	return envelope.Error(1, "could not get coupon info"), nil
}

func (o *Order) create(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	return lookup(ctx, o.store.Orders, params["order_queue_id"], "create"), nil
}

func (o *Order) submit(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	return lookup(ctx, o.store.OrderSubmits, params["order_id"], "submit"), nil
}

func (o *Order) cancel(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	return lookup(ctx, o.store.OrderCancels, params["order_id"], "cancel"), nil
}

func (o *Order) respond(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	return envelope.Success(respondStatus), nil
}

// lookup devolve o resultado configurado; um id sem resultado responde data null.
func lookup(ctx context.Context, results map[string]envelope.Outcome, id, action string) envelope.Response {
	outcome, ok := results[id]
	if !ok {
		return envelope.Success(nil)
	}

	logger := log.Ctx(ctx).With().Str("order", id).Str("action", action).Logger()
	if outcome.Failed() {
		logger.Error().Int("code", outcome.Err.Code).Msg("Order action failed")
	} else {
		logger.Info().Msg("Order action succeeded")
	}
	return outcome.Response()
}

// couponCode lê coupon.coupon_code, aceitando o aninhamento vindo de YAML ou JSON.
func couponCode(c store.Record) string {
	switch nested := c["coupon"].(type) {
	case store.Record:
		return nested.Str("coupon_code")
	case map[string]any:
		return store.Record(nested).Str("coupon_code")
	}
	return ""
}
