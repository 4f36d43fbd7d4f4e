package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/raywall/fake-ubersmith/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Configure inicializa o logger global baseando-se na configuração do YAML.
// O logger devolvido também vira o log.Logger global e o fallback de log.Ctx.
func Configure(cfg config.LoggingConf, serviceName string) zerolog.Logger {
	return configure(cfg, serviceName, os.Stdout)
}

func configure(cfg config.LoggingConf, serviceName string, out io.Writer) zerolog.Logger {
	// Define o nível de log (default: info)
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Define o output (JSON para produção, Console "bonito" para local se solicitado)
	output := out
	if !cfg.Enabled {
		output = io.Discard
	} else if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	log.Logger = logger
	zerolog.DefaultContextLogger = &logger

	return logger
}

// Component devolve um logger filho identificado pelo nome do componente.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
