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

// Package iweb implementa os métodos do módulo de vendor iweb.*.
package iweb

import (
	"context"
	"fmt"
	"regexp"

	"github.com/raywall/fake-ubersmith/pkg/dispatch"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/raywall/fake-ubersmith/pkg/store"
	"github.com/rs/zerolog/log"
)

// aclParam reconhece parâmetros no formato acls[regra][nível].
var aclParam = regexp.MustCompile(`^acls\[([^\]]+)\]\[([^\]]+)\]$`)

// IWeb agrupa os handlers iweb.* (eventos e papéis de administrador).
type IWeb struct {
	store *store.Store
}

// New cria o grupo sobre o Store informado.
func New(st *store.Store) *IWeb {
	return &IWeb{store: st}
}

// Hook registra os métodos iweb.* no Router.
func (i *IWeb) Hook(r *dispatch.Router) {
	r.Register("iweb.log_event", i.logEvent)
	r.Register("iweb.acl_admin_role_add", i.aclAdminRoleAdd)
	r.Register("iweb.user_role_assign", i.userRoleAssign)
}

func (i *IWeb) logEvent(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	i.store.EventLog = append(i.store.EventLog, params.Clone())
	log.Ctx(ctx).Debug().Str("event_type", params["event_type"]).Msg("Event logged")
	return envelope.Success("1"), nil
}

func (i *IWeb) aclAdminRoleAdd(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	name := params["name"]
	for _, role := range i.store.Roles {
		if role.Str("name") == name {
			return envelope.Error(1, fmt.Sprintf("Role with name '%s' already exists", name)), nil
		}
	}

	acls := make(map[string]any)
	for key, value := range params {
		m := aclParam.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		rule, level := m[1], m[2]
		levels, ok := acls[rule].(map[string]any)
		if !ok {
			levels = make(map[string]any)
			acls[rule] = levels
		}
		levels[level] = value
	}

	id := i.store.NewRoleID()
	i.store.Roles[id] = store.Record{
		"role_id": id,
		"name":    name,
		"descr":   params["descr"],
		"acls":    acls,
	}
	log.Ctx(ctx).Info().Str("role_id", id).Str("name", name).Msg("Admin role added")
	return envelope.Success(id), nil
}

func (i *IWeb) userRoleAssign(ctx context.Context, params dispatch.Params) (envelope.Response, error) {
	userID, roleID := params["user_id"], params["role_id"]
	if !i.store.AssignRole(userID, roleID) {
		return envelope.Error(1, fmt.Sprintf("Can't assign role with id '%s' to user with id '%s'", roleID, userID)), nil
	}
	return envelope.Success("1"), nil
}
