// Package observability monta os providers de métricas (DataDog) e de traces (OpenTelemetry) do fake.
package observability

import (
	"fmt"
	"strings"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/raywall/fake-ubersmith/pkg/config"
	"github.com/raywall/fake-ubersmith/pkg/metrics"
	"github.com/rs/zerolog"
)

// DefaultNamespace prefixa as métricas quando o YAML não define um namespace.
const DefaultNamespace = "fake_ubersmith."

// latencySuffix marca as métricas de latência, enviadas como distribution.
const latencySuffix = "_ms"

// NoopProvider descarta tudo; usado com o DataDog desabilitado.
type NoopProvider struct{}

func (n *NoopProvider) Count(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Gauge(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Histogram(name string, value float64, tags []string) error { return nil }

// DatadogProvider envia as métricas do despacho (dispatch.*, fixtures.*) via DogStatsD.
type DatadogProvider struct {
	client statsd.ClientInterface
}

func (d *DatadogProvider) Count(name string, value float64, tags []string) error {
	return d.client.Count(name, int64(value), tags, 1)
}

func (d *DatadogProvider) Gauge(name string, value float64, tags []string) error {
	return d.client.Gauge(name, value, tags, 1)
}

// Histogram manda latências (ex: dispatch.latency_ms) como distribution, para
// que os percentis sejam calculados no agente e não por host.
func (d *DatadogProvider) Histogram(name string, value float64, tags []string) error {
	if strings.HasSuffix(name, latencySuffix) {
		return d.client.Distribution(name, value, tags, 1)
	}
	return d.client.Histogram(name, value, tags, 1)
}

// Close descarrega o buffer e libera o client statsd.
func (d *DatadogProvider) Close() error {
	if err := d.client.Flush(); err != nil {
		return err
	}
	return d.client.Close()
}

// SetupMetrics devolve o provider DataDog ou o Noop, conforme o YAML.
func SetupMetrics(cfg config.MetricsConf, serviceName string, log zerolog.Logger) (metrics.Provider, error) {
	if !cfg.Datadog.Enabled {
		log.Debug().Msg("DataDog desabilitado, métricas do despacho descartadas")
		return &NoopProvider{}, nil
	}

	namespace := cfg.Datadog.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	client, err := statsd.New(cfg.Datadog.Addr,
		statsd.WithNamespace(namespace),
		statsd.WithTags(GlobalTags(serviceName)),
		statsd.WithoutTelemetry(),
		statsd.WithErrorHandler(func(err error) {
			log.Warn().Err(err).Msg("Falha ao enviar métrica")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no datadog statsd: %w", err)
	}

	log.Info().
		Str("addr", cfg.Datadog.Addr).
		Str("namespace", namespace).
		Msg("Métricas DataDog habilitadas")
	return &DatadogProvider{client: client}, nil
}

// GlobalTags são anexadas a todas as métricas do fake.
func GlobalTags(serviceName string) []string {
	return []string{"service:" + serviceName, "fake:ubersmith"}
}
