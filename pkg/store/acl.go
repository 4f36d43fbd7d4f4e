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

package store

import (
	"errors"
	"strconv"
	"strings"
)

// ErrResourceNotFound indica que o recurso pai não existe na árvore.
var ErrResourceNotFound = errors.New("acl resource not found")

// Ações de um recurso ACL, com os ids usados pelo Ubersmith.
const (
	ActionCreate = 1
	ActionRead   = 2
	ActionUpdate = 3
	ActionDelete = 4
)

// ActionLabels mapeia o id da ação para o rótulo exibido.
var ActionLabels = map[int]string{
	ActionCreate: "Create",
	ActionRead:   "View",
	ActionUpdate: "Update",
	ActionDelete: "Delete",
}

var actionNames = map[string]int{
	"create": ActionCreate,
	"read":   ActionRead,
	"update": ActionUpdate,
	"delete": ActionDelete,
}

// ParseActions converte "create,read" em ids. Vazio significa todas as ações.
// Nomes desconhecidos são ignorados.
func ParseActions(csv string) []int {
	if strings.TrimSpace(csv) == "" {
		return []int{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
	}
	var out []int
	seen := make(map[int]bool)
	for _, name := range strings.Split(csv, ",") {
		id, ok := actionNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ACLResource é um nó da árvore de recursos.
type ACLResource struct {
	ID       int
	Name     string
	Label    string
	ParentID int
	Actions  []int
	Children []int
}

// ACLTree é uma arena de recursos indexada por id, com contador monotônico próprio.
type ACLTree struct {
	nodes   map[int]*ACLResource
	roots   []int
	counter int
}

func NewACLTree() *ACLTree {
	return &ACLTree{nodes: make(map[int]*ACLResource)}
}

// Len devolve o número de recursos na árvore.
func (t *ACLTree) Len() int {
	return len(t.nodes)
}

// Roots devolve os recursos de primeiro nível, na ordem de criação.
func (t *ACLTree) Roots() []*ACLResource {
	return t.resolve(t.roots)
}

// ChildrenOf devolve os filhos diretos do recurso.
func (t *ACLTree) ChildrenOf(n *ACLResource) []*ACLResource {
	return t.resolve(n.Children)
}

func (t *ACLTree) resolve(ids []int) []*ACLResource {
	out := make([]*ACLResource, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.nodes[id])
	}
	return out
}

// Find faz uma busca em profundidade pelo nome, a partir das raízes.
func (t *ACLTree) Find(name string) (*ACLResource, bool) {
	var walk func(ids []int) *ACLResource
	walk = func(ids []int) *ACLResource {
		for _, id := range ids {
			n := t.nodes[id]
			if n.Name == name {
				return n
			}
			if found := walk(n.Children); found != nil {
				return found
			}
		}
		return nil
	}
	n := walk(t.roots)
	return n, n != nil
}

// Add cria um recurso. parentName vazio cria uma raiz.
// Um pai inexistente não consome id.
func (t *ACLTree) Add(parentName, name, label string, actions []int) (*ACLResource, error) {
	var parent *ACLResource
	if parentName != "" {
		p, ok := t.Find(parentName)
		if !ok {
			return nil, ErrResourceNotFound
		}
		parent = p
	}

	t.counter++
	node := &ACLResource{
		ID:      t.counter,
		Name:    name,
		Label:   label,
		Actions: actions,
	}
	t.nodes[node.ID] = node

	if parent == nil {
		t.roots = append(t.roots, node.ID)
	} else {
		node.ParentID = parent.ID
		parent.Children = append(parent.Children, node.ID)
	}
	return node, nil
}

// Render devolve a árvore no formato da API: mapa id -> recurso, com filhos aninhados.
func (t *ACLTree) Render() map[string]any {
	return t.render(t.roots)
}

func (t *ACLTree) render(ids []int) map[string]any {
	out := make(map[string]any, len(ids))
	for _, id := range ids {
		n := t.nodes[id]
		actions := make(map[string]any, len(n.Actions))
		for _, a := range n.Actions {
			actions[strconv.Itoa(a)] = ActionLabels[a]
		}
		out[strconv.Itoa(id)] = map[string]any{
			"resource_id": strconv.Itoa(n.ID),
			"name":        n.Name,
			"parent_id":   strconv.Itoa(n.ParentID),
			"lft":         "0",
			"rgt":         "0",
			"active":      "1",
			"label":       n.Label,
			"actions":     actions,
			"children":    t.render(n.Children),
		}
	}
	return out
}
