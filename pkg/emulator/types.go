// Package emulator serve endpoints auxiliares do vendor com respostas configuráveis:
// estáticas, ou filtradas a partir de uma lista de dados por path/query params.
package emulator

// ParamMapping mapeia param da req para campo nos dados
type ParamMapping struct {
	Name   string `json:"name" yaml:"name" validate:"required"`
	MapsTo string `json:"maps_to" yaml:"maps_to" validate:"required"`
}

// Response para status e body
type Response struct {
	Status int         `json:"status" yaml:"status" validate:"gte=100,lt=600"`
	Body   interface{} `json:"body,omitempty" yaml:"body"`
}

// RouteConfig para cada rota
type RouteConfig struct {
	Path              string         `json:"path" yaml:"path" validate:"required,startswith=/"`
	Method            string         `json:"method" yaml:"method" validate:"required,oneof=GET POST PUT PATCH DELETE"`
	Response          *Response      `json:"response,omitempty" yaml:"response"` // Para respostas estáticas
	Data              []interface{}  `json:"data,omitempty" yaml:"data"`         // Para dados dinâmicos
	QueryParams       []ParamMapping `json:"query_params,omitempty" yaml:"query_params" validate:"dive"`
	PathParams        []ParamMapping `json:"path_params,omitempty" yaml:"path_params" validate:"dive"`
	ResponseOnMatch   *Response      `json:"response_on_match,omitempty" yaml:"response_on_match"`
	ResponseOnNoMatch *Response      `json:"response_on_no_match,omitempty" yaml:"response_on_no_match"`
}

// IsStatic indica se a rota devolve sempre a mesma resposta.
func (r RouteConfig) IsStatic() bool {
	return r.Response != nil && len(r.Data) == 0 && len(r.QueryParams) == 0 && len(r.PathParams) == 0
}

// DefaultRoutes são os endpoints do portal interno ("joan") consultados pelos clientes do Ubersmith.
func DefaultRoutes() []RouteConfig {
	return []RouteConfig{
		{
			Path:   "/joan/clients/get_staff.php",
			Method: "GET",
			Response: &Response{
				Status: 200,
				Body: map[string]interface{}{
					"email":    "staff1@example.com",
					"username": "staffuser1",
					"name":     "Staff1",
				},
			},
		},
		{
			Path:   "/joan/clients/client_comments.php",
			Method: "GET",
			Response: &Response{
				Status: 200,
				Body: []interface{}{
					map[string]interface{}{
						"comment_id":      123,
						"time":            "1689180263",
						"user":            "Staff1",
						"comment":         "Comment 1",
						"edited":          "1689180263",
						"editor":          "Bob",
						"client_viewable": 1,
					},
				},
			},
		},
	}
}
