package emulator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Register monta as rotas no router informado.
func Register(router *mux.Router, routes []RouteConfig) {
	for _, route := range routes {
		router.HandleFunc(route.Path, NewHandler(route)).Methods(strings.ToUpper(route.Method))
	}
}

// NewHandler cria o handler de uma rota.
func NewHandler(route RouteConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Se for resposta estática (sem data/params)
		if route.IsStatic() {
			sendResponse(w, r, route.Response.Status, route.Response.Body)
			return
		}

		// Caso contrário, dinâmico: filtrar data baseado em params
		params := make(map[string]string)

		// Extrair path params (via mux)
		vars := mux.Vars(r)
		for _, p := range route.PathParams {
			if value, ok := vars[p.Name]; ok {
				params[p.MapsTo] = value
			}
		}

		// Extrair query params
		query := r.URL.Query()
		for _, p := range route.QueryParams {
			if value := query.Get(p.Name); value != "" {
				params[p.MapsTo] = value
			}
		}

		var matches []interface{}
		for _, item := range route.Data {
			itemMap, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			match := true
			for field, value := range params {
				itemValue, exists := itemMap[field]
				if !exists || !valuesMatch(itemValue, value) {
					match = false
					break
				}
			}
			if match {
				matches = append(matches, item)
			}
		}

		if len(matches) == 0 {
			resp := route.ResponseOnNoMatch
			if resp == nil {
				resp = &Response{Status: http.StatusNotFound, Body: map[string]string{"error": "Not found"}}
			}
			sendResponse(w, r, resp.Status, resp.Body)
			return
		}

		resp := route.ResponseOnMatch
		if resp == nil {
			resp = &Response{Status: http.StatusOK}
		}

		var body interface{}
		if len(matches) == 1 {
			body = matches[0]
		} else {
			body = matches
		}

		sendResponse(w, r, resp.Status, body)
	}
}

func sendResponse(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Erro ao encode response")
		}
	}
}

func valuesMatch(a interface{}, b string) bool {
	switch v := a.(type) {
	case string:
		return v == b
	case float64:
		f, err := strconv.ParseFloat(b, 64)
		return err == nil && v == f
	case int:
		i, err := strconv.Atoi(b)
		return err == nil && v == i
	case bool:
		return strings.ToLower(b) == fmt.Sprintf("%v", v)
	default:
		return false
	}
}
