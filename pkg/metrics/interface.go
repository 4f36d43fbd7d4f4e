package metrics

// Provider define o contrato para envio de métricas.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// MetricType define os tipos suportados.
type MetricType string

const (
	TypeCount     MetricType = "count"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

// Nomes das métricas emitidas pelo despacho.
const (
	DispatchCalls     = "dispatch.calls"
	DispatchLatency   = "dispatch.latency_ms"
	DispatchCrashMode = "dispatch.crash_mode"
	FixturesLoaded    = "fixtures.loaded"
)

// MetricDefinition armazena os metadados da métrica (nome real, tipo).
type MetricDefinition struct {
	Name string
	Type MetricType
}
