package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/raywall/fake-ubersmith/pkg/config"
	"github.com/raywall/fake-ubersmith/pkg/engine"
	"github.com/raywall/fake-ubersmith/pkg/transport"
	"github.com/spf13/cobra"
)

var (
	// Variáveis injetáveis para mocking
	serverStarter = transport.StartHTTPServer
	lambdaStarter = func(handler interface{}) { lambda.Start(handler) }
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Sobe o fake no runtime configurado (HTTP local ou Lambda)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts.configPath)
		},
	}
}

func runServe(ctx context.Context, cfgPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, cfgPath)
}

// run contém a lógica principal testável
func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.NewLoader().Load(ctx, cfgPath)
	if err != nil {
		return err
	}

	svcEngine, err := engine.NewServiceEngine(cfg, cfgPath)
	if err != nil {
		return err
	}

	switch cfg.Service.Runtime {
	case "local", "ec2", "ecs", "eks":
		return serverStarter(ctx, svcEngine)
	case "lambda":
		handler := transport.NewLambdaHandler(svcEngine)
		lambdaStarter(handler.Handle)
		return nil
	default:
		return fmt.Errorf("runtime desconhecido: %s", cfg.Service.Runtime)
	}
}
