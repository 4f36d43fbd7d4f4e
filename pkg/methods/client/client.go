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

// Package client implementa os métodos client.* (clientes, contatos, permissões,
// metadados e cartões de crédito).
package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/raywall/fake-ubersmith/pkg/dispatch"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/raywall/fake-ubersmith/pkg/store"
	"github.com/rs/zerolog/log"
)

// Client agrupa os handlers client.* sobre um Store.
// Os handlers rodam com o lock do Store já adquirido pelo Router.
type Client struct {
	store *store.Store

	creditCard       envelope.Outcome
	creditCardDelete envelope.Outcome
}

// New cria o grupo com as simulações de cartão no padrão de sucesso.
func New(st *store.Store) *Client {
	return &Client{
		store:            st,
		creditCard:       envelope.Ok(1),
		creditCardDelete: envelope.Ok(true),
	}
}

// Hook registra os métodos do grupo no Router.
func (c *Client) Hook(r *dispatch.Router) {
	r.Register("client.add", c.add)
	r.Register("client.update", c.update)
	r.Register("client.get", c.get)
	r.Register("client.get_all", c.getAll)

	r.Register("client.contact_add", c.contactAdd)
	r.Register("client.contact_get", c.contactGet)
	r.Register("client.contact_list", c.contactList)
	r.Register("client.contact_update", c.contactUpdate)
	r.Register("client.contact_permission_list", c.permissionList)
	r.Register("client.contact_permission_set", c.permissionSet)

	r.Register("client.metadata_single", c.metadataSingle)
	r.Register("client.metadata_get", c.metadataSingle)

	r.Register("client.cc_add", c.ccAdd)
	r.Register("client.cc_update", c.ccUpdate)
	r.Register("client.cc_info", c.ccInfo)
	r.Register("client.cc_delete", c.ccDelete)

	r.Register("client.invoice_count", c.invoiceCount)
	r.Register("client.service_count_status", c.emptyList)
	r.Register("uber.attachment_get", c.emptyList)
	r.Register("uber.attachment_list", c.emptyList)
}

func (c *Client) add(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	clientID := c.store.NewClientID()

	client := store.FromParams(params)
	client["clientid"] = clientID
	client["contact_id"] = "0"
	if email, ok := params["email"]; ok {
		client["email"] = removeSpaces(email)
	}
	if login := params["uber_login"]; login != "" {
		client["login"] = removeSpaces(login)
		delete(client, "uber_login")
	} else if login, ok := params["login"]; ok {
		client["login"] = removeSpaces(login)
	}

	realName := "Real Name"
	if name := params["full_name"]; name != "" {
		realName = name
	}

	log.Ctx(ctx).Info().Str("client_id", clientID).Msg("Adding client")
	c.store.Clients = append(c.store.Clients, client)

	// o contato primário recebe login "contact<id>", único por cliente
	c.insertContact(store.Record{
		"client_id":      clientID,
		"description":    "Primary Contact",
		"password":       "so_much_invalid_password",
		"real_name":      realName,
		"rwhois_contact": 0,
		"created":        c.store.Now().Unix(),
		"active":         1,
		"phone":          "1234567890",
		"email":          "contact1@example.com",
	})

	return envelope.Success(clientID), nil
}

func (c *Client) update(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	clientID := params["client_id"]
	client, ok := c.store.FindClient(clientID)
	if !ok {
		return envelope.Response{}, dispatch.Internal("client '%s' does not exist", clientID)
	}

	log.Ctx(ctx).Info().Str("client_id", clientID).Msg("Updating client")
	copyIfPresent(client, "first", params, "first")
	copyIfPresent(client, "last", params, "last")
	copyIfPresent(client, "email", params, "email")
	copyIfPresent(client, "login", params, "uber_login")

	for key, value := range params {
		if name, found := strings.CutPrefix(key, "meta_"); found {
			c.store.SetMetadata(clientID, name, value)
		}
	}

	return envelope.Success(true), nil
}

func (c *Client) get(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	var (
		client store.Record
		ok     bool
		lookup string
	)
	if id := params["client_id"]; id != "" {
		lookup = id
		client, ok = c.store.FindClient(id)
	} else {
		lookup = params["user_login"]
		client, ok = c.store.FindClientBy("login", lookup)
		if !ok {
			client, ok = c.store.FindClient(lookup)
		}
	}

	if !ok {
		log.Ctx(ctx).Info().Str("client_id", lookup).Msg("Can't find client")
		return envelope.Error(1, fmt.Sprintf("Client ID '%s' not found.", lookup)), nil
	}

	out := formatClient(client)
	delete(out, "contact_id")
	delete(out, "uber_pass")
	if params["acls"] == "1" {
		out["acls"] = []any{}
	}
	return envelope.Success(out), nil
}

func (c *Client) getAll(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	out := make([]any, 0, len(c.store.Clients))
	for _, client := range c.store.Clients {
		out = append(out, client.Clone())
	}
	return envelope.Success(out), nil
}

func (c *Client) metadataSingle(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	clientID, name := params["client_id"], params["variable"]
	log.Ctx(ctx).Debug().Str("client_id", clientID).Str("variable", name).Msg("Gathering metadata")

	value, ok := c.store.Metadata[clientID][name]
	if !ok || value == nil {
		return envelope.Success([]any{}), nil
	}
	return envelope.Success(value), nil
}

func (c *Client) invoiceCount(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	return envelope.Success(1), nil
}

func (c *Client) emptyList(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	return envelope.Success([]any{}), nil
}

// formatClient devolve uma cópia do cliente com listed_company preenchido.
func formatClient(client store.Record) store.Record {
	out := client.Clone()
	company := out.Str("company")
	if company == "" {
		company = out.Str("last") + ", " + out.Str("first")
	}
	out["listed_company"] = company
	return out
}

func copyIfPresent(target store.Record, targetKey string, params dispatch.Params, key string) {
	if v, ok := params[key]; ok {
		target[targetKey] = v
	}
}

func removeSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
