package config

import (
	"time"

	"github.com/raywall/fake-ubersmith/pkg/emulator"
	"github.com/raywall/fake-ubersmith/pkg/envelope"
)

// ServiceConfig representa a estrutura raiz do arquivo YAML do fake.
type ServiceConfig struct {
	Version     string          `yaml:"version" validate:"required"`
	Service     ServiceDetails  `yaml:"service" validate:"required" envPrefix:"FAKE_UBERSMITH_"`
	Fixtures    FixturesConf    `yaml:"fixtures" envPrefix:"FAKE_UBERSMITH_FIXTURES_"`
	Faults      []FaultRule     `yaml:"faults" validate:"dive"`
	Simulations SimulationsConf `yaml:"simulations"`
	Emulator    EmulatorConf    `yaml:"emulator"`
	GraphQL     GraphQLConf     `yaml:"graphql" envPrefix:"FAKE_UBERSMITH_GRAPHQL_"`
	Records     RecordsConf     `yaml:"records"`
}

// ServiceDetails contém os metadados e configurações de runtime do serviço.
type ServiceDetails struct {
	Name    string      `yaml:"name" env:"NAME" validate:"required,hostname_rfc1123"`
	Runtime string      `yaml:"runtime" env:"RUNTIME" validate:"required,oneof=local lambda ecs eks ec2"`
	Port    int         `yaml:"port" env:"PORT" validate:"required_if=Runtime local"` // Obrigatório apenas se local
	Route   string      `yaml:"route" validate:"required,startswith=/,endswith=/"`
	Timeout string      `yaml:"timeout" env:"TIMEOUT" validate:"required"` // Ex: "500ms", "2s"
	Logging LoggingConf `yaml:"logging" envPrefix:"LOG_"`
	Metrics MetricsConf `yaml:"metrics"`
	Tracing TracingConf `yaml:"tracing" envPrefix:"TRACING_"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Level   string `yaml:"level" env:"LEVEL" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" env:"FORMAT" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf              `yaml:"datadog"`
	Rules   []MetricRegistrationRule `yaml:"rules" validate:"dive"`
}

type DatadogConf struct {
	Enabled           bool                     `yaml:"enabled" env:"DD_ENABLED"`
	Addr              string                   `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace         string                   `yaml:"namespace"`
	CustomDefinitions []CustomMetricDefinition `yaml:"custom_definitions" validate:"dive"`
}

type CustomMetricDefinition struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type" validate:"oneof=count gauge histogram"`
}

// MetricRegistrationRule registra uma métrica customizada a cada despacho.
// Value e Tags são expressões CEL sobre method, params, outcome e code.
type MetricRegistrationRule struct {
	MetricID string            `yaml:"metric_id" validate:"required"`
	When     string            `yaml:"when"`
	Value    string            `yaml:"value" validate:"required"`
	Tags     map[string]string `yaml:"tags"`
}

type TracingConf struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Endpoint string `yaml:"endpoint" env:"ENDPOINT" validate:"required_if=Enabled true"`
	Insecure bool   `yaml:"insecure" env:"INSECURE"`
}

// FixturesConf define de onde vêm os dados pré-carregados.
// Source aceita diretório/arquivo local, s3://, dynamodb:// ou redis://.
type FixturesConf struct {
	Source         string        `yaml:"source" env:"SOURCE"`
	LoadOnStart    bool          `yaml:"load_on_start" env:"LOAD_ON_START"`
	SQSReloadQueue string        `yaml:"sqs_reload_queue" env:"RELOAD_QUEUE"`
	RedisPassword  string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	SQL            SQLSourceConf `yaml:"sql"`
}

// SQLSourceConf lê documentos de fixture de uma tabela (um documento por linha).
type SQLSourceConf struct {
	Driver string `yaml:"driver" validate:"omitempty,oneof=postgres"`
	DSN    string `yaml:"dsn" validate:"required_with=Driver"`
	Query  string `yaml:"query" validate:"required_with=Driver"`
}

// Enabled indica se a fonte SQL foi configurada.
func (s SQLSourceConf) Enabled() bool {
	return s.Driver != ""
}

// FaultRule injeta falhas do vendor quando a expressão CEL When é verdadeira.
type FaultRule struct {
	ID        string `yaml:"id" validate:"required"`
	When      string `yaml:"when" validate:"required"`
	ErrorCode int    `yaml:"error_code"`
	Message   string `yaml:"message" validate:"required"`
	Fatal     bool   `yaml:"fatal"`
}

// SimulationsConf define as respostas simuladas dos processadores de cartão e planos.
type SimulationsConf struct {
	CreditCard       *envelope.Outcome     `yaml:"credit_card"`
	CreditCardDelete *envelope.Outcome     `yaml:"credit_card_delete"`
	ServicePlanError *envelope.VendorError `yaml:"service_plan_error"`
}

type EmulatorConf struct {
	Enabled bool                   `yaml:"enabled"`
	Routes  []emulator.RouteConfig `yaml:"routes" validate:"dive"`
}

type GraphQLConf struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Route   string `yaml:"route" validate:"omitempty,startswith=/"`
}

type RecordsConf struct {
	Limit int `yaml:"limit" validate:"gte=0"`
}

func (s ServiceDetails) GetTimeout() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Default devolve a configuração usada quando nenhum arquivo é informado.
func Default() *ServiceConfig {
	return &ServiceConfig{
		Version: "1.0",
		Service: ServiceDetails{
			Name:    "fake-ubersmith",
			Runtime: "local",
			Port:    9131,
			Route:   "/api/2.0/",
			Timeout: "30s",
			Logging: LoggingConf{Enabled: true, Level: "info", Format: "json"},
		},
		Emulator: EmulatorConf{Enabled: true, Routes: emulator.DefaultRoutes()},
		GraphQL:  GraphQLConf{Enabled: true, Route: "/__graphql"},
		Records:  RecordsConf{Limit: 1000},
	}
}
