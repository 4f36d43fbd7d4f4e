package transport

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambdaHandler_Dispatch(t *testing.T) {
	handler := NewLambdaHandler(newTestEngine(t, nil))

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/2.0/",
		Body:       "method=client.add&login=john",
		Headers:    map[string]string{"X-Correlation-Id": "abc"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"status":true`)
	assert.Equal(t, "abc", resp.Headers[HeaderCorrelationID])

	resp, err = handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		Path:                  "/api/2.0/",
		QueryStringParameters: map[string]string{"method": "uber.check_login", "login": "john", "pass": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"error_message":"Invalid login or password."`)
	assert.NotEmpty(t, resp.Headers[HeaderCorrelationID])
}

func TestLambdaHandler_Base64AndFatal(t *testing.T) {
	handler := NewLambdaHandler(newTestEngine(t, nil))

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		Path:            "/api/2.0/",
		Body:            base64.StdEncoding.EncodeToString([]byte("method=order.respond")),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"data":8`)

	resp, err = handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		Path: "/api/2.0/",
		Body: "method=does.not_exist",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, resp.Body, `"error"`)
}

func TestLambdaHandler_Routes(t *testing.T) {
	handler := NewLambdaHandler(newTestEngine(t, nil))

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{Path: "/status"})
	require.NoError(t, err)
	assert.Contains(t, resp.Body, "Service is running")

	resp, err = handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		Path: "/__graphql",
		Body: `{"query":"{ clients { id } }"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"clients":[]`)

	resp, err = handler.Handle(context.Background(), events.APIGatewayProxyRequest{Path: "/__graphql", Body: "{bad"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// sem origem configurada
	resp, err = handler.Handle(context.Background(), events.APIGatewayProxyRequest{Path: "/api/2.0/load_fixtures"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"result":"failure"}`, resp.Body)
}
