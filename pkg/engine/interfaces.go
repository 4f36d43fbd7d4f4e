package engine

import (
	"context"

	"github.com/raywall/fake-ubersmith/pkg/dispatch"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/raywall/fake-ubersmith/pkg/fixtures"
)

// Executor é a interface de tempo de execução consumida pelos transportes.
// Deve ser thread-safe, pois é chamada concorrentemente por cada requisição.
type Executor interface {
	// Dispatch executa um método RPC. Qualquer erro devolvido é fatal (HTTP 500).
	Dispatch(ctx context.Context, method string, params dispatch.Params) (envelope.Response, error)

	// LoadFixtures substitui o estado pelo documento da origem informada.
	LoadFixtures(ctx context.Context, source string) (*fixtures.Document, error)

	// Flush esvazia o estado em memória.
	Flush()

	// Shutdown realiza o encerramento gracioso de recursos (tracing, métricas).
	Shutdown(ctx context.Context) error
}

var _ Executor = (*ServiceEngine)(nil)
