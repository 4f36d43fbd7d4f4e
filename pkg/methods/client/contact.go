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
	"fmt"
	"strings"

	"github.com/raywall/fake-ubersmith/pkg/dispatch"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/raywall/fake-ubersmith/pkg/store"
	"github.com/rs/zerolog/log"
)

// permissionResourceID é o id fixo do recurso devolvido pelas chamadas de permissão.
const permissionResourceID = "123"

var contactFields = []string{
	"real_name", "description", "phone", "email", "login",
	"password", "rwhois_contact", "created", "active",
}

func (c *Client) contactAdd(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	id := c.insertContact(store.FromParams(params))
	log.Ctx(ctx).Info().Str("contact_id", id).Str("client_id", params["client_id"]).Msg("Contact added")
	return envelope.Success(id), nil
}

// insertContact grava o contato com um novo contact_id e devolve o id.
func (c *Client) insertContact(contact store.Record) string {
	id := c.store.NewContactID()
	contact["contact_id"] = id
	if !contact.Has("login") {
		contact["login"] = "contact" + id
	}
	if !contact.Has("rwhois_contact") {
		contact["rwhois_contact"] = 0
	}
	if !contact.Has("active") {
		contact["active"] = 1
	}
	c.store.Contacts = append(c.store.Contacts, contact)
	return id
}

func (c *Client) contactGet(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	var (
		contact store.Record
		ok      bool
		matcher string
	)
	if login, has := params["user_login"]; has {
		matcher = "user_login"
		contact, ok = c.store.FindContactBy("login", login)
	} else if id, has := params["contact_id"]; has {
		matcher = "contact_id"
		contact, ok = c.store.FindContact(id)
	} else {
		log.Ctx(ctx).Error().Msg("No valid user_login or contact_id specified")
		return envelope.Error(1, "No contact ID specified"), nil
	}

	if !ok {
		return envelope.Error(1, fmt.Sprintf("Invalid %s specified.", matcher)), nil
	}
	return envelope.Success(c.formatContact(contact)), nil
}

func (c *Client) contactList(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	clientID, has := params["client_id"]
	if !has {
		return envelope.Error(1, "No valid client ID specified"), nil
	}

	contacts := c.store.ContactsOf(clientID)
	if len(contacts) == 0 {
		return envelope.Error(1, "Invalid client_id specified."), nil
	}
	out := make(map[string]any, len(contacts))
	for _, contact := range contacts {
		out[contact.Str("contact_id")] = contact.Clone()
	}
	return envelope.Success(out), nil
}

func (c *Client) contactUpdate(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	contact, err := c.mustContact(params["contact_id"])
	if err != nil {
		return envelope.Response{}, err
	}

	log.Ctx(ctx).Info().Str("contact_id", params["contact_id"]).Msg("Updating contact")
	for _, field := range contactFields {
		copyIfPresent(contact, field, params, field)
	}
	return envelope.Success(true), nil
}

func (c *Client) permissionList(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	contactID := params["contact_id"]
	if _, err := c.mustContact(contactID); err != nil {
		return envelope.Response{}, err
	}

	perm, ok := c.store.Permissions[contactID][params["resource_name"]]
	if !ok {
		return envelope.Success(defaultPermissions()), nil
	}
	return envelope.Success(renderPermission(perm)), nil
}

func (c *Client) permissionSet(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	contactID, resource := params["contact_id"], params["resource_name"]
	if _, err := c.mustContact(contactID); err != nil {
		return envelope.Response{}, err
	}

	if c.store.Permissions[contactID] == nil {
		c.store.Permissions[contactID] = make(map[string]*store.Permission)
	}
	perm, ok := c.store.Permissions[contactID][resource]
	if !ok {
		perm = &store.Permission{
			Name:      resource,
			Effective: map[string]any{"read": 0, "create": 0, "update": 0, "delete": 0},
		}
		c.store.Permissions[contactID][resource] = perm
	}

	if params["type"] == "allow" {
		perm.Effective[params["action"]] = 1
	} else {
		perm.Effective[params["action"]] = false
	}
	return envelope.Success(""), nil
}

func (c *Client) mustContact(id string) (store.Record, error) {
	contact, ok := c.store.FindContact(id)
	if !ok {
		return nil, dispatch.Internal("contact '%s' does not exist", id)
	}
	return contact, nil
}

// formatContact monta a visão de client.contact_get.
func (c *Client) formatContact(contact store.Record) store.Record {
	out := contact.Clone()
	out["email_name"], out["email_domain"] = splitEmail(out.Str("email"))
	out["password"] = "{ssha1}whatver it's hashed"
	out["password_timeout"] = "0"
	out["password_changed"] = "1549657344"
	out["first"] = out.Str("real_name")
	out["last"] = ""

	if client, ok := c.store.FindClient(contact.Str("client_id")); ok {
		out["listed_company"] = formatClient(client)["listed_company"]
	}
	return out
}

// splitEmail separa no primeiro "@"; sem "@" ambas as partes ficam vazias.
func splitEmail(email string) (string, string) {
	name, domain, found := strings.Cut(email, "@")
	if !found {
		return "", ""
	}
	return name, domain
}

func renderPermission(p *store.Permission) map[string]any {
	effective := make(map[string]any, len(p.Effective))
	for k, v := range p.Effective {
		effective[k] = v
	}
	return map[string]any{
		permissionResourceID: map[string]any{
			"resource_id": permissionResourceID,
			"name":        p.Name,
			"parent_id":   "",
			"lft":         "",
			"rgt":         "",
			"active":      "1",
			"label":       "Manage Contacts",
			"actions":     []any{"2", "1", "3", "4"},
			"action":      []any{},
			"effective":   effective,
		},
	}
}

func defaultPermissions() map[string]any {
	return map[string]any{
		permissionResourceID: map[string]any{
			"resource_id": permissionResourceID,
			"name":        "some permission name",
			"parent_id":   "456",
			"lft":         "1035",
			"rgt":         "1036",
			"active":      "1",
			"label":       "some permission label",
			"actions":     []any{"2", "1", "3", "4"},
			"effective":   map[string]any{"read": 0, "create": 0, "update": 0, "delete": 0},
		},
	}
}
