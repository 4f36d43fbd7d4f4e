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

package client

import (
	"context"

	"github.com/raywall/fake-ubersmith/pkg/dispatch"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/rs/zerolog/log"
)

// SetCreditCardResponse define o resultado de client.cc_add e client.cc_update.
func (c *Client) SetCreditCardResponse(o envelope.Outcome) {
	c.store.Lock()
	defer c.store.Unlock()
	c.creditCard = o
}

// SetCreditCardDeleteResponse define o resultado de client.cc_delete.
func (c *Client) SetCreditCardDeleteResponse(o envelope.Outcome) {
	c.store.Lock()
	defer c.store.Unlock()
	c.creditCardDelete = o
}

func (c *Client) ccAdd(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	log.Ctx(ctx).Debug().Interface("params", params).Msg("cc_add")
	return c.creditCard.Response(), nil
}

func (c *Client) ccUpdate(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	log.Ctx(ctx).Debug().Interface("params", params).Msg("cc_update")
	if c.creditCard.Failed() {
		return c.creditCard.Response(), nil
	}
	return envelope.Success(true), nil
}

func (c *Client) ccDelete(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	log.Ctx(ctx).Debug().Interface("params", params).Msg("cc_delete")
	return c.creditCardDelete.Response(), nil
}

// ccInfo filtra por billing_info_id ou, na falta dele, por client_id.
func (c *Client) ccInfo(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	var key, value string
	if id, ok := params["billing_info_id"]; ok {
		key, value = "billing_info_id", id
	} else if id, ok := params["client_id"]; ok {
		key, value = "clientid", id
	} else {
		return envelope.Error(1, "request failed: client_id parameter not supplied"), nil
	}

	out := make(map[string]any)
	for _, cc := range c.store.CreditCards {
		if cc.Has(key) && cc.Str(key) == value {
			out[cc.Str("billing_info_id")] = cc.Clone()
		}
	}
	return envelope.Success(out), nil
}
