package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gorilla/mux"
	"github.com/raywall/fake-ubersmith/pkg/cloud"
	"github.com/raywall/fake-ubersmith/pkg/dispatch"
	"github.com/raywall/fake-ubersmith/pkg/emulator"
	"github.com/raywall/fake-ubersmith/pkg/engine"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/rs/zerolog/log"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
	ContextKeyCorrID    = "correlation_id"

	// ParamMethod é o parâmetro que carrega o nome do método RPC.
	ParamMethod = "method"

	maxFormMemory   = 32 << 20
	shutdownTimeout = 5 * time.Second
)

// StartHTTPServer sobe o servidor e bloqueia até ctx ser cancelado ou /__shutdown ser chamado.
func StartHTTPServer(ctx context.Context, svc *engine.ServiceEngine) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	handler := ObservabilityMiddleware(NewRouter(svc, stop))
	addr := fmt.Sprintf(":%d", svc.Config.Service.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if queue := svc.Config.Fixtures.SQSReloadQueue; queue != "" {
		awsCfg, err := cloud.GetAWSConfig(ctx, "")
		if err != nil {
			return fmt.Errorf("falha ao carregar config AWS para o reload: %w", err)
		}
		go NewSQSReloader(sqs.NewFromConfig(awsCfg), queue, svc).Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		svc.Logger.Info().Msgf("Servidor HTTP ouvindo em %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	svc.Logger.Info().Msg("Encerrando servidor HTTP")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("falha no shutdown do servidor: %w", err)
	}
	return svc.Shutdown(shutdownCtx)
}

// NewRouter monta todas as rotas do fake. stop é chamado por /__shutdown.
func NewRouter(svc *engine.ServiceEngine, stop func()) *mux.Router {
	r := mux.NewRouter()
	route := svc.Config.Service.Route

	r.HandleFunc(route+"load_fixtures", loadFixturesHandler(svc)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(route, dispatchHandler(svc)).Methods(http.MethodGet, http.MethodPost)

	r.HandleFunc("/status", statusHandler).Methods(http.MethodGet)
	r.HandleFunc("/__shutdown", shutdownHandler(stop)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/__flush", flushHandler(svc)).Methods(http.MethodPost)
	r.HandleFunc("/__records", recordsHandler(svc)).Methods(http.MethodGet, http.MethodDelete)

	if gql := svc.GetGraphQLEngine(); gql != nil {
		svc.Logger.Info().Msgf("Registrando GraphQL em %s", svc.Config.GraphQL.Route)
		r.Handle(svc.Config.GraphQL.Route, gql).Methods(http.MethodGet, http.MethodPost)
	}

	if svc.Config.Emulator.Enabled {
		emulator.Register(r, svc.Config.Emulator.Routes)
	}
	return r
}

// ExtractParams separa o método dos parâmetros planos da requisição.
// O corpo (form ou multipart) tem precedência sobre a query string.
func ExtractParams(r *http.Request) (string, dispatch.Params, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return "", nil, fmt.Errorf("corpo inválido: %w", err)
	}

	params := make(dispatch.Params)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	for k, v := range r.PostForm {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	method := params[ParamMethod]
	delete(params, ParamMethod)
	return method, params, nil
}

func dispatchHandler(svc *engine.ServiceEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method, params, err := ExtractParams(r)
		if err != nil {
			writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), svc.Config.Service.GetTimeout())
		defer cancel()

		resp, err := svc.Dispatch(ctx, method, params)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("method", method).Msg("Erro fatal no despacho")
			writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func loadFixturesHandler(svc *engine.ServiceEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, params, err := ExtractParams(r)
		if err != nil {
			writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		doc, err := svc.LoadFixtures(r.Context(), params["source"])
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Falha ao carregar fixtures")
			writeJSON(w, r, http.StatusInternalServerError, map[string]string{"result": "failure"})
			return
		}
		log.Ctx(r.Context()).Info().Interface("counts", doc.Counts()).Msg("Fixtures carregadas")
		writeJSON(w, r, http.StatusOK, map[string]string{"result": "success"})
	}
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, envelope.Success("Service is running"))
}

func shutdownHandler(stop func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, envelope.Success("Shutting down server..."))
		if stop != nil {
			stop()
		}
	}
}

func flushHandler(svc *engine.ServiceEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Flush()
		writeJSON(w, r, http.StatusOK, envelope.Success("Store flushed"))
	}
}

func recordsHandler(svc *engine.ServiceEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := svc.Router.Recorder()
		if r.Method == http.MethodDelete {
			rec.Reset()
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, r, http.StatusOK, rec.ByMethod())
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Falha ao serializar resposta")
	}
}
