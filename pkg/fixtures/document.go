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

// Package fixtures carrega dados pré-configurados no Store a partir de arquivos,
// S3, DynamoDB, Redis ou de um banco SQL.
package fixtures

import (
	"fmt"
	"sort"

	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/raywall/fake-ubersmith/pkg/store"
	"gopkg.in/yaml.v3"
)

// Orders guarda os resultados de order.create (por order_queue_id) e de
// order.submit/order.cancel (por order_id).
type Orders struct {
	Create map[string]envelope.Outcome `yaml:"create"`
	Submit map[string]envelope.Outcome `yaml:"submit"`
	Cancel map[string]envelope.Outcome `yaml:"cancel"`
}

// ACLResource é reaplicado na árvore de ACL na ordem do documento.
// Actions usa a mesma lista separada por vírgulas de uber.acl_resource_add.
type ACLResource struct {
	Parent  string `yaml:"parent"`
	Name    string `yaml:"name"`
	Label   string `yaml:"label"`
	Actions string `yaml:"actions"`
}

// Document é o formato de um arquivo de fixtures (YAML ou JSON).
type Document struct {
	Clients          []map[string]any          `yaml:"clients"`
	Contacts         []map[string]any          `yaml:"contacts"`
	CreditCards      []map[string]any          `yaml:"credit_cards"`
	Coupons          []map[string]any          `yaml:"coupons"`
	ServicePlans     []map[string]any          `yaml:"service_plans"`
	ServicePlansList map[string]map[string]any `yaml:"service_plans_list"`
	Orders           Orders                    `yaml:"orders"`
	Roles            map[string]map[string]any `yaml:"roles"`
	UserRoles        map[string][]string       `yaml:"user_roles"`
	Metadata         map[string]map[string]any `yaml:"metadata"`
	ACLResources     []ACLResource             `yaml:"acl_resources"`
}

// Parse decodifica um documento. JSON é aceito por ser um subconjunto de YAML.
func Parse(raw []byte) (*Document, error) {
	doc := &Document{}
	if err := yaml.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return doc, nil
}

// Merge acrescenta other ao documento. Em chaves repetidas, other vence.
func (d *Document) Merge(other *Document) {
	if other == nil {
		return
	}
	d.Clients = append(d.Clients, other.Clients...)
	d.Contacts = append(d.Contacts, other.Contacts...)
	d.CreditCards = append(d.CreditCards, other.CreditCards...)
	d.Coupons = append(d.Coupons, other.Coupons...)
	d.ServicePlans = append(d.ServicePlans, other.ServicePlans...)
	d.ACLResources = append(d.ACLResources, other.ACLResources...)

	d.ServicePlansList = mergeMap(d.ServicePlansList, other.ServicePlansList)
	d.Orders.Create = mergeMap(d.Orders.Create, other.Orders.Create)
	d.Orders.Submit = mergeMap(d.Orders.Submit, other.Orders.Submit)
	d.Orders.Cancel = mergeMap(d.Orders.Cancel, other.Orders.Cancel)
	d.Roles = mergeMap(d.Roles, other.Roles)
	d.UserRoles = mergeMap(d.UserRoles, other.UserRoles)
	d.Metadata = mergeMap(d.Metadata, other.Metadata)
}

// Apply grava o documento em data, que deve estar recém-criado.
func (d *Document) Apply(data *store.Data) error {
	data.Clients = records(d.Clients)
	data.Contacts = records(d.Contacts)
	data.CreditCards = records(d.CreditCards)
	data.Coupons = records(d.Coupons)
	data.ServicePlans = records(d.ServicePlans)

	if d.ServicePlansList != nil {
		data.ServicePlansList = make(map[string]store.Record, len(d.ServicePlansList))
		for id, plan := range d.ServicePlansList {
			data.ServicePlansList[id] = store.Record(plan).Clone()
		}
	}

	for id, o := range d.Orders.Create {
		data.Orders[id] = o
	}
	for id, o := range d.Orders.Submit {
		data.OrderSubmits[id] = o
	}
	for id, o := range d.Orders.Cancel {
		data.OrderCancels[id] = o
	}

	for id, role := range d.Roles {
		data.Roles[id] = store.Record(role).Clone()
	}
	users := make([]string, 0, len(d.UserRoles))
	for user := range d.UserRoles {
		users = append(users, user)
	}
	sort.Strings(users)
	for _, user := range users {
		for _, role := range d.UserRoles[user] {
			data.AssignRole(user, role)
		}
	}
	for clientID, vars := range d.Metadata {
		for name, value := range vars {
			data.SetMetadata(clientID, name, value)
		}
	}

	for _, r := range d.ACLResources {
		if _, err := data.ACL.Add(r.Parent, r.Name, r.Label, store.ParseActions(r.Actions)); err != nil {
			return fmt.Errorf("acl resource %q (parent %q): %w", r.Name, r.Parent, err)
		}
	}
	return nil
}

// Counts resume quantos itens cada coleção do documento carrega.
func (d *Document) Counts() map[string]int {
	return map[string]int{
		"clients":            len(d.Clients),
		"contacts":           len(d.Contacts),
		"credit_cards":       len(d.CreditCards),
		"coupons":            len(d.Coupons),
		"service_plans":      len(d.ServicePlans),
		"service_plans_list": len(d.ServicePlansList),
		"orders":             len(d.Orders.Create) + len(d.Orders.Submit) + len(d.Orders.Cancel),
		"roles":              len(d.Roles),
		"user_roles":         len(d.UserRoles),
		"metadata":           len(d.Metadata),
		"acl_resources":      len(d.ACLResources),
	}
}

func records(in []map[string]any) []store.Record {
	if len(in) == 0 {
		return nil
	}
	out := make([]store.Record, len(in))
	for i, r := range in {
		out[i] = store.Record(r).Clone()
	}
	return out
}

func mergeMap[V any](dst, src map[string]V) map[string]V {
	if src == nil {
		return dst
	}
	if dst == nil {
		dst = make(map[string]V, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
