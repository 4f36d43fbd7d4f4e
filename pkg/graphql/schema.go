package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// recordScalar expõe um registro livre (mapa) como JSON.
var recordScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Record",
	Description: "Registro livre do Store, serializado como objeto JSON",
	Serialize:   func(value interface{}) interface{} { return value },
	ParseValue:  func(value interface{}) interface{} { return value },
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return nil
	},
})

// buildSchema constrói o objeto Schema do GraphQL
func buildSchema(r *resolver) (graphql.Schema, error) {
	clientType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Client",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.String, Resolve: r.field("clientid")},
			"login":   &graphql.Field{Type: graphql.String, Resolve: r.field("login")},
			"first":   &graphql.Field{Type: graphql.String, Resolve: r.field("first")},
			"last":    &graphql.Field{Type: graphql.String, Resolve: r.field("last")},
			"email":   &graphql.Field{Type: graphql.String, Resolve: r.field("email")},
			"company": &graphql.Field{Type: graphql.String, Resolve: r.field("company")},
			"record":  &graphql.Field{Type: recordScalar, Resolve: r.self},
		},
	})

	contactType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Contact",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String, Resolve: r.field("contact_id")},
			"clientId": &graphql.Field{Type: graphql.String, Resolve: r.field("client_id")},
			"login":    &graphql.Field{Type: graphql.String, Resolve: r.field("login")},
			"realName": &graphql.Field{Type: graphql.String, Resolve: r.field("real_name")},
			"email":    &graphql.Field{Type: graphql.String, Resolve: r.field("email")},
			"record":   &graphql.Field{Type: recordScalar, Resolve: r.self},
		},
	})

	roleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Role",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String, Resolve: r.field("role_id")},
			"name":  &graphql.Field{Type: graphql.String, Resolve: r.field("name")},
			"descr": &graphql.Field{Type: graphql.String, Resolve: r.field("descr")},
			"acls":  &graphql.Field{Type: recordScalar, Resolve: r.raw("acls")},
			"users": &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: r.roleUsers},
		},
	})

	eventType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Event",
		Fields: graphql.Fields{
			"eventType":     &graphql.Field{Type: graphql.String, Resolve: r.field("event_type")},
			"referenceType": &graphql.Field{Type: graphql.String, Resolve: r.field("reference_type")},
			"referenceId":   &graphql.Field{Type: graphql.String, Resolve: r.field("reference_id")},
			"action":        &graphql.Field{Type: graphql.String, Resolve: r.field("action")},
			"user":          &graphql.Field{Type: graphql.String, Resolve: r.field("user")},
			"record":        &graphql.Field{Type: recordScalar, Resolve: r.self},
		},
	})

	aclType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "ACLResource",
		Fields: graphql.Fields{},
	})
	aclType.AddFieldConfig("id", &graphql.Field{Type: graphql.Int})
	aclType.AddFieldConfig("name", &graphql.Field{Type: graphql.String})
	aclType.AddFieldConfig("label", &graphql.Field{Type: graphql.String})
	aclType.AddFieldConfig("parentId", &graphql.Field{Type: graphql.Int})
	aclType.AddFieldConfig("actions", &graphql.Field{Type: graphql.NewList(graphql.String)})
	aclType.AddFieldConfig("children", &graphql.Field{Type: graphql.NewList(aclType)})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"clients": &graphql.Field{Type: graphql.NewList(clientType), Resolve: r.clients},
			"client": &graphql.Field{
				Type:    clientType,
				Args:    graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}},
				Resolve: r.client,
			},
			"contacts": &graphql.Field{
				Type:    graphql.NewList(contactType),
				Args:    graphql.FieldConfigArgument{"clientId": &graphql.ArgumentConfig{Type: graphql.String}},
				Resolve: r.contacts,
			},
			"roles":        &graphql.Field{Type: graphql.NewList(roleType), Resolve: r.roles},
			"events":       &graphql.Field{Type: graphql.NewList(eventType), Resolve: r.events},
			"aclResources": &graphql.Field{Type: graphql.NewList(aclType), Resolve: r.aclResources},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}
