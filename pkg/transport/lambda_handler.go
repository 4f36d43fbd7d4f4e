package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/raywall/fake-ubersmith/pkg/dispatch"
	"github.com/raywall/fake-ubersmith/pkg/engine"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/rs/zerolog/log"
)

// LambdaHandler adapta eventos do API Gateway para a ServiceEngine
type LambdaHandler struct {
	svc *engine.ServiceEngine
}

// NewLambdaHandler cria uma nova instância do adaptador
func NewLambdaHandler(svc *engine.ServiceEngine) *LambdaHandler {
	return &LambdaHandler{svc: svc}
}

// Handle processa a requisição Lambda
func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	corrID := header(req.Headers, HeaderCorrelationID)
	if corrID == "" {
		corrID = uuid.NewString()
	}

	logger := log.With().Str("correlation_id", corrID).Logger()
	ctx = logger.WithContext(ctx)
	ctx = context.WithValue(ctx, ContextKeyCorrID, corrID)

	var response events.APIGatewayProxyResponse
	route := h.svc.Config.Service.Route
	switch {
	case h.svc.GetGraphQLEngine() != nil && req.Path == h.svc.Config.GraphQL.Route:
		response = h.handleGraphQL(ctx, req)
	case req.Path == "/status":
		response = jsonResponse(http.StatusOK, envelope.Success("Service is running"))
	case req.Path == route+"load_fixtures":
		response = h.handleLoadFixtures(ctx, req)
	default:
		response = h.handleDispatch(ctx, req)
	}

	logger.Info().
		Str("method", req.HTTPMethod).
		Str("path", req.Path).
		Int("status", response.StatusCode).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("lambda request completed")

	response.Headers[HeaderCorrelationID] = corrID
	return response, nil
}

func (h *LambdaHandler) handleGraphQL(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var p struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	body, err := requestBody(req)
	if err == nil {
		err = json.Unmarshal([]byte(body), &p)
	}
	if err != nil {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid graphql request"})
	}

	result := h.svc.GetGraphQLEngine().Execute(ctx, p.Query, p.Variables)
	return jsonResponse(http.StatusOK, result)
}

func (h *LambdaHandler) handleLoadFixtures(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	_, params, err := lambdaParams(req)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if _, err := h.svc.LoadFixtures(ctx, params["source"]); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Falha ao carregar fixtures")
		return jsonResponse(http.StatusInternalServerError, map[string]string{"result": "failure"})
	}
	return jsonResponse(http.StatusOK, map[string]string{"result": "success"})
}

func (h *LambdaHandler) handleDispatch(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	method, params, err := lambdaParams(req)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(ctx, h.svc.Config.Service.GetTimeout())
	defer cancel()

	resp, err := h.svc.Dispatch(ctx, method, params)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("method", method).Msg("Erro fatal no despacho Lambda")
		return jsonResponse(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return jsonResponse(http.StatusOK, resp)
}

// lambdaParams aplica a mesma regra do HTTP: corpo form-encoded vence a query string.
func lambdaParams(req events.APIGatewayProxyRequest) (string, dispatch.Params, error) {
	params := make(dispatch.Params)
	for k, v := range req.QueryStringParameters {
		params[k] = v
	}

	body, err := requestBody(req)
	if err != nil {
		return "", nil, err
	}
	if body != "" {
		form, err := url.ParseQuery(body)
		if err != nil {
			return "", nil, err
		}
		for k, v := range form {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
	}

	method := params[ParamMethod]
	delete(params, ParamMethod)
	return method, params, nil
}

func requestBody(req events.APIGatewayProxyRequest) (string, error) {
	if !req.IsBase64Encoded {
		return req.Body, nil
	}
	raw, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// header busca o header sem diferenciar maiúsculas (o API Gateway nem sempre normaliza).
func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func jsonResponse(status int, body any) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		raw = []byte(`{"error": "internal server error"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(raw),
	}
}
