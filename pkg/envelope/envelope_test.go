package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record map[string]any

func TestNormalize(t *testing.T) {
	t.Run("mapa vazio vira lista vazia", func(t *testing.T) {
		assert.Equal(t, []any{}, Normalize(map[string]any{}))
	})

	t.Run("recursivo em mapas e listas", func(t *testing.T) {
		in := map[string]any{
			"a": map[string]any{},
			"b": []any{map[string]any{}, "x"},
			"c": map[string]any{"d": map[string]string{}},
		}
		out := Normalize(in)
		assert.Equal(t, map[string]any{
			"a": []any{},
			"b": []any{[]any{}, "x"},
			"c": map[string]any{"d": []any{}},
		}, out)
	})

	t.Run("tipos nomeados de mapa", func(t *testing.T) {
		out := Normalize(record{"children": record{}})
		assert.Equal(t, map[string]any{"children": []any{}}, out)
	})

	t.Run("escalares intactos", func(t *testing.T) {
		assert.Equal(t, "", Normalize(""))
		assert.Equal(t, 8, Normalize(8))
		assert.Nil(t, Normalize(nil))
	})
}

func TestResponse_MarshalJSON(t *testing.T) {
	t.Run("sucesso", func(t *testing.T) {
		b, err := json.Marshal(Success(map[string]any{"1": map[string]any{}}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":true,"error_code":null,"error_message":"","data":{"1":[]}}`, string(b))
	})

	t.Run("erro soft", func(t *testing.T) {
		b, err := json.Marshal(Error(1, "Client ID '1' not found."))
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":false,"error_code":1,"error_message":"Client ID '1' not found.","data":""}`, string(b))
	})

	t.Run("data vazio como lista", func(t *testing.T) {
		b, err := json.Marshal(Success(map[string]string{}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":true,"error_code":null,"error_message":"","data":[]}`, string(b))
	})
}

func TestOutcome(t *testing.T) {
	ok := Ok("payload").Response()
	assert.False(t, ok.Failed())
	assert.Equal(t, "payload", ok.Data)

	failed := Fail(42, "boom").Response()
	require.True(t, failed.Failed())
	assert.Equal(t, 42, *failed.ErrorCode)
	assert.Equal(t, "boom", failed.ErrorMessage)
	assert.Equal(t, "", failed.Data)
}
