// Package graphql expõe uma consulta somente leitura sobre o conteúdo do Store,
// útil para inspecionar o estado do fake durante testes de integração.
package graphql

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/raywall/fake-ubersmith/pkg/store"
	"github.com/rs/zerolog/log"
)

type GraphQLEngine struct {
	Schema graphql.Schema
}

func NewGraphQLEngine(st *store.Store) (*GraphQLEngine, error) {
	schema, err := buildSchema(&resolver{store: st})
	if err != nil {
		return nil, err
	}
	return &GraphQLEngine{Schema: schema}, nil
}

func (ge *GraphQLEngine) Execute(ctx context.Context, query string, variables map[string]interface{}) *graphql.Result {
	params := graphql.Params{
		Schema:         ge.Schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	}
	return graphql.Do(params)
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// ServeHTTP atende POST com {query, variables} ou GET com ?query=.
func (ge *GraphQLEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	switch r.Method {
	case http.MethodGet:
		req.Query = r.URL.Query().Get("query")
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error": "invalid graphql request"}`, http.StatusBadRequest)
			return
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result := ge.Execute(r.Context(), req.Query, req.Variables)
	if len(result.Errors) > 0 {
		log.Ctx(r.Context()).Warn().Interface("errors", result.Errors).Msg("GraphQL query returned errors")
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode graphql response")
	}
}
