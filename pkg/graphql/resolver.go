package graphql

import (
	"sort"
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/raywall/fake-ubersmith/pkg/store"
)

// resolver lê o Store sempre sob o lock e devolve cópias.
type resolver struct {
	store *store.Store
}

func asRecord(src interface{}) store.Record {
	switch v := src.(type) {
	case store.Record:
		return v
	case map[string]interface{}:
		return store.Record(v)
	}
	return nil
}

// field devolve o valor do registro como texto; chave ausente vira null.
func (r *resolver) field(key string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		rec := asRecord(p.Source)
		if rec == nil || !rec.Has(key) {
			return nil, nil
		}
		return rec.Str(key), nil
	}
}

func (r *resolver) raw(key string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		return asRecord(p.Source)[key], nil
	}
}

func (r *resolver) self(p graphql.ResolveParams) (interface{}, error) {
	return map[string]interface{}(asRecord(p.Source)), nil
}

func (r *resolver) clients(p graphql.ResolveParams) (interface{}, error) {
	var out []store.Record
	r.store.View(func(d *store.Data) {
		out = cloneAll(d.Clients)
	})
	return out, nil
}

func (r *resolver) client(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	var out store.Record
	r.store.View(func(d *store.Data) {
		if c, ok := d.FindClient(id); ok {
			out = c.Clone()
		}
	})
	if out == nil {
		return nil, nil
	}
	return out, nil
}

func (r *resolver) contacts(p graphql.ResolveParams) (interface{}, error) {
	clientID, filtered := p.Args["clientId"].(string)
	var out []store.Record
	r.store.View(func(d *store.Data) {
		if filtered {
			out = cloneAll(d.ContactsOf(clientID))
			return
		}
		out = cloneAll(d.Contacts)
	})
	return out, nil
}

func (r *resolver) roles(p graphql.ResolveParams) (interface{}, error) {
	out := []store.Record{}
	r.store.View(func(d *store.Data) {
		ids := make([]string, 0, len(d.Roles))
		for id := range d.Roles {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			role := d.Roles[id].Clone()
			if !role.Has("role_id") {
				role["role_id"] = id
			}
			out = append(out, role)
		}
	})
	return out, nil
}

func (r *resolver) roleUsers(p graphql.ResolveParams) (interface{}, error) {
	roleID := asRecord(p.Source).Str("role_id")
	var users []string
	r.store.View(func(d *store.Data) {
		for user, roles := range d.UserRoles {
			for _, id := range roles {
				if id == roleID {
					users = append(users, user)
					break
				}
			}
		}
	})
	sort.Strings(users)
	return users, nil
}

func (r *resolver) events(p graphql.ResolveParams) (interface{}, error) {
	out := []store.Record{}
	r.store.View(func(d *store.Data) {
		for _, e := range d.EventLog {
			out = append(out, store.FromParams(e))
		}
	})
	return out, nil
}

func (r *resolver) aclResources(p graphql.ResolveParams) (interface{}, error) {
	var out []map[string]interface{}
	r.store.View(func(d *store.Data) {
		out = renderACL(d.ACL, d.ACL.Roots())
	})
	return out, nil
}

func renderACL(tree *store.ACLTree, nodes []*store.ACLResource) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(nodes))
	for _, n := range nodes {
		actions := make([]string, 0, len(n.Actions))
		for _, a := range n.Actions {
			actions = append(actions, strconv.Itoa(a)+":"+store.ActionLabels[a])
		}
		out = append(out, map[string]interface{}{
			"id":       n.ID,
			"name":     n.Name,
			"label":    n.Label,
			"parentId": n.ParentID,
			"actions":  actions,
			"children": renderACL(tree, tree.ChildrenOf(n)),
		})
	}
	return out
}

func cloneAll(in []store.Record) []store.Record {
	out := make([]store.Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
