package fixtures

import (
	"testing"

	"github.com/raywall/fake-ubersmith/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
clients:
  - clientid: "1"
    first: John
    login: john
    uber_pass: smith
contacts:
  - contact_id: "10"
    client_id: "1"
    login: line
credit_cards:
  - billing_info_id: "5"
    clientid: "1"
coupons:
  - coupon:
      coupon_code: ABC
service_plans_list:
  "1":
    plan_id: "1"
    code: A
orders:
  create:
    q1:
      data:
        order_id: "42"
  submit:
    "42":
      error:
        code: 2
        message: order failed
roles:
  r1:
    role_id: r1
    name: admins
user_roles:
  u1: [r1]
metadata:
  "1":
    colour: blue
acl_resources:
  - name: root
    label: Root
  - parent: root
    name: child
    label: Child
    actions: read
`

func TestParseAndApply(t *testing.T) {
	doc, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	st := store.New()
	require.NoError(t, st.Replace(doc.Apply))

	require.Len(t, st.Clients, 1)
	assert.Equal(t, "john", st.Clients[0].Str("login"))
	assert.Len(t, st.Contacts, 1)
	assert.Len(t, st.CreditCards, 1)
	assert.Len(t, st.Coupons, 1)
	assert.Nil(t, st.ServicePlans)
	assert.Equal(t, "A", st.ServicePlansList["1"].Str("code"))

	require.Contains(t, st.Orders, "q1")
	assert.False(t, st.Orders["q1"].Failed())
	require.Contains(t, st.OrderSubmits, "42")
	assert.Equal(t, 2, st.OrderSubmits["42"].Err.Code)
	assert.Equal(t, "order failed", st.OrderSubmits["42"].Err.Message)

	assert.Equal(t, "admins", st.Roles["r1"].Str("name"))
	assert.Equal(t, []string{"r1"}, st.UserRoles["u1"])
	assert.Equal(t, "blue", st.Metadata["1"]["colour"])

	child, ok := st.ACL.Find("child")
	require.True(t, ok)
	assert.Equal(t, 2, child.ID)
	assert.Equal(t, 1, child.ParentID)
	assert.Equal(t, []int{store.ActionRead}, child.Actions)

	counts := doc.Counts()
	assert.Equal(t, 1, counts["clients"])
	assert.Equal(t, 2, counts["orders"])
	assert.Equal(t, 2, counts["acl_resources"])
}

func TestParseJSON(t *testing.T) {
	doc, err := Parse([]byte(`{"clients": [{"clientid": "7"}], "service_plans": [{"plan_id": "1"}]}`))
	require.NoError(t, err)
	assert.Len(t, doc.Clients, 1)
	assert.Len(t, doc.ServicePlans, 1)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("clients: {not: [a list"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	a := &Document{
		Clients: []map[string]any{{"clientid": "1"}},
		Roles:   map[string]map[string]any{"r1": {"name": "old"}},
	}
	b := &Document{
		Clients: []map[string]any{{"clientid": "2"}},
		Roles:   map[string]map[string]any{"r1": {"name": "new"}, "r2": {"name": "other"}},
	}
	a.Merge(b)
	a.Merge(nil)

	assert.Len(t, a.Clients, 2)
	assert.Equal(t, "new", a.Roles["r1"]["name"])
	assert.Len(t, a.Roles, 2)
}

func TestApplyACLMissingParent(t *testing.T) {
	doc := &Document{ACLResources: []ACLResource{{Parent: "ghost", Name: "x"}}}

	st := store.New()
	st.Clients = []store.Record{{"clientid": "keep"}}

	err := st.Replace(doc.Apply)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrResourceNotFound)
	assert.Len(t, st.Clients, 1, "falha mantém os dados anteriores")
}
