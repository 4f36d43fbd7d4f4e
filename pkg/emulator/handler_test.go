package emulator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper para executar request através do roteador (necessário para mux.Vars funcionar)
func executeRequest(routes []RouteConfig, method, path string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	Register(router, routes)

	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestDefaultRoutes(t *testing.T) {
	t.Run("get_staff", func(t *testing.T) {
		rr := executeRequest(DefaultRoutes(), http.MethodGet, "/joan/clients/get_staff.php")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"email":"staff1@example.com","username":"staffuser1","name":"Staff1"}`, rr.Body.String())
	})

	t.Run("client_comments", func(t *testing.T) {
		rr := executeRequest(DefaultRoutes(), http.MethodGet, "/joan/clients/client_comments.php?client_id=1")
		require.Equal(t, http.StatusOK, rr.Code)

		var comments []map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &comments))
		require.Len(t, comments, 1)
		assert.Equal(t, "Comment 1", comments[0]["comment"])
		assert.Equal(t, float64(123), comments[0]["comment_id"])
	})
}

func TestNewHandler_Dynamic_PathParams(t *testing.T) {
	route := RouteConfig{
		Path:   "/staff/{id}",
		Method: "GET",
		Data: []interface{}{
			map[string]interface{}{"id": 1, "name": "Alice"},
			map[string]interface{}{"id": 2, "name": "Bob"},
		},
		PathParams:        []ParamMapping{{Name: "id", MapsTo: "id"}},
		ResponseOnMatch:   &Response{Status: 200},
		ResponseOnNoMatch: &Response{Status: 404, Body: "not found"},
	}

	t.Run("Match Found (Alice)", func(t *testing.T) {
		rr := executeRequest([]RouteConfig{route}, "GET", "/staff/1")
		require.Equal(t, 200, rr.Code)
		var res map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
		assert.Equal(t, "Alice", res["name"])
	})

	t.Run("No Match", func(t *testing.T) {
		rr := executeRequest([]RouteConfig{route}, "GET", "/staff/999")
		assert.Equal(t, 404, rr.Code)
	})
}

func TestNewHandler_Dynamic_QueryParams(t *testing.T) {
	route := RouteConfig{
		Path:   "/comments",
		Method: "GET",
		Data: []interface{}{
			map[string]interface{}{"client_id": "1", "comment": "a"},
			map[string]interface{}{"client_id": "1", "comment": "b"},
			map[string]interface{}{"client_id": "2", "comment": "c"},
		},
		QueryParams: []ParamMapping{{Name: "client_id", MapsTo: "client_id"}},
	}

	rr := executeRequest([]RouteConfig{route}, "GET", "/comments?client_id=1")
	require.Equal(t, 200, rr.Code)

	// Mais de um match devolve lista
	var res []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Len(t, res, 2)

	rr = executeRequest([]RouteConfig{route}, "GET", "/comments?client_id=2")
	var single map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &single))
	assert.Equal(t, "c", single["comment"])
}

func TestValuesMatch(t *testing.T) {
	assert.True(t, valuesMatch("a", "a"))
	assert.True(t, valuesMatch(float64(2), "2"))
	assert.True(t, valuesMatch(3, "3"))
	assert.True(t, valuesMatch(true, "TRUE"))
	assert.False(t, valuesMatch([]string{}, "x"))
}
