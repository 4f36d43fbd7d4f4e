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

// Package uber implementa os métodos uber.* de sessão, planos de serviço e ACL.
package uber

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raywall/fake-ubersmith/pkg/dispatch"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/raywall/fake-ubersmith/pkg/store"
	"github.com/rs/zerolog/log"
)

const passwordChanged = "1549380089"

// Uber agrupa os handlers uber.* de sessão, planos de serviço e árvore de ACL.
type Uber struct {
	store *store.Store

	servicePlanError *envelope.VendorError
}

// New cria o grupo sobre o Store informado.
func New(st *store.Store) *Uber {
	return &Uber{store: st}
}

// Hook registra os métodos uber.* no Router.
func (u *Uber) Hook(r *dispatch.Router) {
	r.Register("uber.check_login", u.checkLogin)
	r.Register("uber.service_plan_get", u.servicePlanGet)
	r.Register("uber.service_plan_list", u.servicePlanList)
	r.Register("uber.acl_admin_role_get", u.aclAdminRoleGet)
	r.Register("uber.acl_resource_add", u.aclResourceAdd)
	r.Register("uber.acl_resource_list", u.aclResourceList)
}

// SetServicePlanError faz uber.service_plan_get falhar sempre com o erro informado.
// nil restaura o comportamento normal.
func (u *Uber) SetServicePlanError(e *envelope.VendorError) {
	u.store.Lock()
	defer u.store.Unlock()
	u.servicePlanError = e
}

func (u *Uber) checkLogin(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	login, pass := params["login"], params["pass"]

	for _, c := range u.store.Clients {
		if matches(c, "login", login) && matches(c, "uber_pass", pass) {
			id := c.Str("clientid")
			return envelope.Success(map[string]any{
				"id":               id,
				"client_id":        id,
				"contact_id":       0,
				"login":            c.Str("login"),
				"fullname":         joinNonEmpty(c.Str("first"), c.Str("last")),
				"email":            c.Str("email"),
				"last_login":       nil,
				"password_timeout": "0",
				"password_changed": passwordChanged,
				"type":             "client",
			}), nil
		}
	}

	for _, c := range u.store.Contacts {
		if matches(c, "login", login) && matches(c, "password", pass) {
			name, domain, found := strings.Cut(c.Str("email"), "@")
			if !found {
				name, domain = "", ""
			}
			return envelope.Success(map[string]any{
				"id":               c.Str("client_id") + "-" + c.Str("contact_id"),
				"client_id":        c.Str("client_id"),
				"contact_id":       c.Str("contact_id"),
				"login":            c.Str("login"),
				"fullname":         c.Str("real_name"),
				"email":            name + "@" + domain,
				"last_login":       nil,
				"password_timeout": "0",
				"password_changed": passwordChanged,
				"type":             "contact",
			}), nil
		}
	}

	log.Ctx(ctx).Info().Str("login", login).Msg("Invalid login attempt")
	return envelope.Error(3, "Invalid login or password."), nil
}

func (u *Uber) servicePlanGet(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	if e := u.servicePlanError; e != nil {
		return envelope.Error(e.Code, e.Message), nil
	}

	for _, plan := range u.store.ServicePlans {
		if matches(plan, "plan_id", params["plan_id"]) {
			return envelope.Success(plan.Clone()), nil
		}
	}
	return envelope.Error(3, "No Service Plan found"), nil
}

func (u *Uber) servicePlanList(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	code, filtered := params["code"]
	if !filtered {
		if u.store.ServicePlansList == nil {
			return envelope.Success(nil), nil
		}
		out := make(map[string]any, len(u.store.ServicePlansList))
		for id, plan := range u.store.ServicePlansList {
			out[id] = plan.Clone()
		}
		return envelope.Success(out), nil
	}

	out := make(map[string]any)
	for _, plan := range u.store.ServicePlansList {
		if plan.Str("code") == code {
			out[plan.Str("plan_id")] = plan.Clone()
		}
	}
	return envelope.Success(out), nil
}

func (u *Uber) aclAdminRoleGet(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	roleID, ok := params["role_id"]
	if !ok {
		return envelope.Error(1, "role_id parameter not specified"), nil
	}

	if userID, ok := params["userid"]; ok {
		out := make(map[string]any)
		for _, id := range u.store.UserRoles[userID] {
			if role, exists := u.store.Roles[id]; exists {
				out[id] = role.Clone()
			}
		}
		if len(out) == 0 {
			return envelope.Error(1, "No User Roles found"), nil
		}
		return envelope.Success(out), nil
	}

	role, exists := u.store.Roles[roleID]
	if !exists {
		return envelope.Error(1, "No User Roles found"), nil
	}
	return envelope.Success(role.Clone()), nil
}

func (u *Uber) aclResourceAdd(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	parent := params["parent_resource_name"]
	node, err := u.store.ACL.Add(parent, params["resource_name"], params["label"], store.ParseActions(params["actions"]))
	if errors.Is(err, store.ErrResourceNotFound) {
		return envelope.Error(1, fmt.Sprintf("Resource [%s] not found", parent)), nil
	}
	if err != nil {
		return envelope.Response{}, err
	}

	log.Ctx(ctx).Info().Int("resource_id", node.ID).Str("name", node.Name).Msg("ACL resource added")
	return envelope.Success(""), nil
}

func (u *Uber) aclResourceList(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	return envelope.Success(u.store.ACL.Render()), nil
}

func matches(r store.Record, key, value string) bool {
	return r.Has(key) && r.Str(key) == value
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
