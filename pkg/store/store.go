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

// Package store mantém o estado em memória do fake Ubersmith.
//
// O Store embute um sync.Mutex: o roteador segura o lock durante todo o
// despacho de um método, e os handlers acessam Data diretamente sem travar.
// Quem estiver fora de um despacho (admin, fixtures, GraphQL) usa View,
// Update ou Replace.
package store

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/raywall/fake-ubersmith/pkg/envelope"
)

// Permission guarda as flags efetivas de um recurso de permissão de um contato.
type Permission struct {
	Name      string
	Effective map[string]any
}

// Data agrupa todas as coleções simuladas.
type Data struct {
	Clients      []Record
	Contacts     []Record
	CreditCards  []Record
	Coupons      []Record
	ServicePlans []Record
	// ServicePlansList nil significa "nenhuma lista configurada" (data null).
	ServicePlansList map[string]Record

	// Resultados pré-configurados de pedidos, indexados por order_queue_id / order_id.
	Orders       map[string]envelope.Outcome
	OrderSubmits map[string]envelope.Outcome
	OrderCancels map[string]envelope.Outcome

	// Permissions: contact_id -> nome do recurso -> permissão.
	Permissions map[string]map[string]*Permission
	Roles       map[string]Record
	// UserRoles: user_id -> role_ids na ordem de atribuição.
	UserRoles map[string][]string
	// Metadata: client_id -> variável -> valor.
	Metadata map[string]map[string]any
	EventLog []map[string]string
	ACL      *ACLTree
}

func newData() Data {
	return Data{
		Orders:       make(map[string]envelope.Outcome),
		OrderSubmits: make(map[string]envelope.Outcome),
		OrderCancels: make(map[string]envelope.Outcome),
		Permissions:  make(map[string]map[string]*Permission),
		Roles:        make(map[string]Record),
		UserRoles:    make(map[string][]string),
		Metadata:     make(map[string]map[string]any),
		ACL:          NewACLTree(),
	}
}

// Store é o contexto compartilhado por todos os handlers.
type Store struct {
	sync.Mutex
	Data

	newID func() int
	now   func() time.Time
}

// Option customiza o Store (útil em testes).
type Option func(*Store)

// WithIDGenerator troca o gerador de ids aleatórios.
func WithIDGenerator(fn func() int) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock troca o relógio usado em campos de data.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// New cria um Store vazio.
func New(opts ...Option) *Store {
	s := &Store{
		Data:  newData(),
		newID: func() int { return rand.IntN(1_000_000) + 1 },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Flush esvazia todas as coleções e reinicia o contador de recursos ACL.
func (s *Store) Flush() {
	s.Lock()
	defer s.Unlock()
	s.Data = newData()
}

// View executa fn com o lock adquirido, para leitura.
func (s *Store) View(fn func(d *Data)) {
	s.Lock()
	defer s.Unlock()
	fn(&s.Data)
}

// Replace monta um estado novo via fn e só o publica se fn não falhar.
func (s *Store) Replace(fn func(d *Data) error) error {
	fresh := newData()
	if err := fn(&fresh); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	s.Data = fresh
	return nil
}

// Now devolve o horário atual do relógio configurado.
func (s *Store) Now() time.Time {
	return s.now()
}

// NewClientID gera um id ainda não usado por nenhum cliente.
func (s *Store) NewClientID() string {
	return s.uniqueID(func(id string) bool {
		_, ok := s.FindClient(id)
		return ok
	})
}

// NewContactID gera um id ainda não usado por nenhum contato.
func (s *Store) NewContactID() string {
	return s.uniqueID(func(id string) bool {
		_, ok := s.FindContact(id)
		return ok
	})
}

// NewRoleID gera um id ainda não usado por nenhuma role.
func (s *Store) NewRoleID() string {
	return s.uniqueID(func(id string) bool {
		_, ok := s.Roles[id]
		return ok
	})
}

func (s *Store) uniqueID(taken func(string) bool) string {
	for {
		id := strconv.Itoa(s.newID())
		if !taken(id) {
			return id
		}
	}
}

// FindClient busca um cliente pelo clientid.
func (d *Data) FindClient(id string) (Record, bool) {
	return findBy(d.Clients, "clientid", id)
}

// FindClientBy busca o primeiro cliente cujo campo key vale value.
func (d *Data) FindClientBy(key, value string) (Record, bool) {
	return findBy(d.Clients, key, value)
}

// FindContact busca um contato pelo contact_id.
func (d *Data) FindContact(id string) (Record, bool) {
	return findBy(d.Contacts, "contact_id", id)
}

// FindContactBy busca o primeiro contato cujo campo key vale value.
func (d *Data) FindContactBy(key, value string) (Record, bool) {
	return findBy(d.Contacts, key, value)
}

// ContactsOf lista os contatos de um cliente, na ordem de criação.
func (d *Data) ContactsOf(clientID string) []Record {
	var out []Record
	for _, c := range d.Contacts {
		if c.Str("client_id") == clientID {
			out = append(out, c)
		}
	}
	return out
}

// AssignRole adiciona a role ao usuário. Devolve false se já estava atribuída.
func (d *Data) AssignRole(userID, roleID string) bool {
	for _, r := range d.UserRoles[userID] {
		if r == roleID {
			return false
		}
	}
	d.UserRoles[userID] = append(d.UserRoles[userID], roleID)
	return true
}

// SetMetadata grava uma variável de metadados do cliente.
func (d *Data) SetMetadata(clientID, name string, value any) {
	if d.Metadata[clientID] == nil {
		d.Metadata[clientID] = make(map[string]any)
	}
	d.Metadata[clientID][name] = value
}

func findBy(records []Record, key, value string) (Record, bool) {
	for _, r := range records {
		if r.Has(key) && r.Str(key) == value {
			return r, true
		}
	}
	return nil, false
}
