// Package engine monta o fake a partir da configuração: Store, Router, grupos de
// métodos, fixtures, regras de falha e observabilidade.
package engine

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/raywall/fake-ubersmith/pkg/config"
	"github.com/raywall/fake-ubersmith/pkg/dispatch"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
	"github.com/raywall/fake-ubersmith/pkg/fixtures"
	"github.com/raywall/fake-ubersmith/pkg/graphql"
	"github.com/raywall/fake-ubersmith/pkg/logger"
	"github.com/raywall/fake-ubersmith/pkg/methods/client"
	"github.com/raywall/fake-ubersmith/pkg/methods/iweb"
	"github.com/raywall/fake-ubersmith/pkg/methods/order"
	"github.com/raywall/fake-ubersmith/pkg/methods/uber"
	"github.com/raywall/fake-ubersmith/pkg/metrics"
	"github.com/raywall/fake-ubersmith/pkg/observability"
	"github.com/raywall/fake-ubersmith/pkg/rules"
	"github.com/raywall/fake-ubersmith/pkg/store"
	"github.com/rs/zerolog"
)

type ServiceEngine struct {
	mu              sync.RWMutex
	ConfigSource    string
	Config          *config.ServiceConfig
	Logger          zerolog.Logger
	Metrics         metrics.Provider
	MetricProcessor *metrics.Processor
	RuleManager     *rules.RuleManager
	Faults          *rules.FaultSet
	Store           *store.Store
	Router          *dispatch.Router
	Fixtures        *fixtures.Loader
	GraphQLEngine   *graphql.GraphQLEngine

	Clients *client.Client
	Uber    *uber.Uber

	shutdownTracing observability.ShutdownFunc
}

// Option customiza a montagem do engine.
type Option func(*options)

type options struct {
	storeOpts   []store.Option
	fixtureOpts []fixtures.LoaderOption
}

// WithStoreOptions repassa opções ao Store (ex.: gerador de ids determinístico).
func WithStoreOptions(opts ...store.Option) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, opts...) }
}

// WithFixtureOptions repassa opções ao carregador de fixtures.
func WithFixtureOptions(opts ...fixtures.LoaderOption) Option {
	return func(o *options) { o.fixtureOpts = append(o.fixtureOpts, opts...) }
}

func NewServiceEngine(cfg *config.ServiceConfig, configSource string, opts ...Option) (*ServiceEngine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := logger.Configure(cfg.Service.Logging, cfg.Service.Name)

	metricProvider, err := observability.SetupMetrics(cfg.Service.Metrics, cfg.Service.Name, logger.Component(log, "metrics"))
	if err != nil {
		return nil, fmt.Errorf("falha métricas: %w", err)
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg.Service.Tracing, cfg.Service.Name)
	if err != nil {
		return nil, fmt.Errorf("falha tracing: %w", err)
	}

	rm, err := rules.NewRuleManager()
	if err != nil {
		return nil, fmt.Errorf("falha fatal ao iniciar RuleManager: %w", err)
	}

	faults, err := rules.NewFaultSet(rm, cfg.Faults)
	if err != nil {
		return nil, fmt.Errorf("falha regras de falha: %w", err)
	}

	metricProcessor := metrics.NewProcessor(cfg.Service.Metrics, metricProvider, rm)

	st := store.New(o.storeOpts...)
	router := dispatch.NewRouter(
		dispatch.WithLocker(st),
		dispatch.WithFaults(faults),
		dispatch.WithMetrics(metricProvider, metricProcessor),
		dispatch.WithRecorder(dispatch.NewRecorder(cfg.Records.Limit)),
		dispatch.WithLogger(logger.Component(log, "dispatch")),
	)

	clients := client.New(st)
	ub := uber.New(st)
	clients.Hook(router)
	order.New(st).Hook(router)
	ub.Hook(router)
	iweb.New(st).Hook(router)

	applySimulations(cfg.Simulations, clients, ub)

	fixtureOpts := append([]fixtures.LoaderOption{
		fixtures.WithMetrics(metricProvider),
		fixtures.WithLogger(logger.Component(log, "fixtures")),
	}, o.fixtureOpts...)
	loader := fixtures.NewLoader(st, cfg.Fixtures, fixtureOpts...)

	var gqlEngine *graphql.GraphQLEngine
	if cfg.GraphQL.Enabled {
		gqlEngine, err = graphql.NewGraphQLEngine(st)
		if err != nil {
			return nil, fmt.Errorf("falha ao iniciar engine graphql: %w", err)
		}
	}

	se := &ServiceEngine{
		ConfigSource:    configSource,
		Config:          cfg,
		Logger:          log,
		Metrics:         metricProvider,
		MetricProcessor: metricProcessor,
		RuleManager:     rm,
		Faults:          faults,
		Store:           st,
		Router:          router,
		Fixtures:        loader,
		GraphQLEngine:   gqlEngine,
		Clients:         clients,
		Uber:            ub,
		shutdownTracing: shutdownTracing,
	}

	if cfg.Fixtures.LoadOnStart {
		if _, err := se.LoadFixtures(context.Background(), ""); err != nil {
			return nil, fmt.Errorf("falha ao carregar fixtures: %w", err)
		}
	}

	log.Info().
		Int("methods", len(router.Methods())).
		Int("faults", faults.Len()).
		Msg("Engine pronta")
	return se, nil
}

func applySimulations(sim config.SimulationsConf, c *client.Client, u *uber.Uber) {
	if sim.CreditCard != nil {
		c.SetCreditCardResponse(*sim.CreditCard)
	}
	if sim.CreditCardDelete != nil {
		c.SetCreditCardDeleteResponse(*sim.CreditCardDelete)
	}
	if sim.ServicePlanError != nil {
		u.SetServicePlanError(sim.ServicePlanError)
	}
}

// Dispatch executa um método RPC. Erros devolvidos são sempre fatais.
func (se *ServiceEngine) Dispatch(ctx context.Context, method string, params dispatch.Params) (envelope.Response, error) {
	return se.Router.Dispatch(ctx, method, params)
}

// LoadFixtures troca o conteúdo do Store pelo documento da origem (vazia = configurada).
func (se *ServiceEngine) LoadFixtures(ctx context.Context, source string) (*fixtures.Document, error) {
	return se.Fixtures.Load(ctx, source)
}

// Reload recarrega as fixtures configuradas. Chamado pelo SQSReloader.
func (se *ServiceEngine) Reload() error {
	se.Logger.Info().Msgf("🔄 Recarregando fixtures de: %s", se.Config.Fixtures.Source)
	if _, err := se.LoadFixtures(context.Background(), ""); err != nil {
		return fmt.Errorf("falha ao recarregar fixtures: %w", err)
	}
	se.Logger.Info().Msg("✅ Fixtures recarregadas")
	return nil
}

// Flush esvazia o Store.
func (se *ServiceEngine) Flush() {
	se.Store.Flush()
	se.Logger.Info().Msg("Store esvaziado")
}

func (se *ServiceEngine) GetGraphQLEngine() *graphql.GraphQLEngine {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return se.GraphQLEngine
}

// Shutdown encerra tracing e o client de métricas.
func (se *ServiceEngine) Shutdown(ctx context.Context) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	var firstErr error
	if se.shutdownTracing != nil {
		firstErr = se.shutdownTracing(ctx)
		se.shutdownTracing = nil
	}
	if c, ok := se.Metrics.(io.Closer); ok {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
