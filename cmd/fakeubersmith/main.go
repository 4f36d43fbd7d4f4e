package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "fakeubersmith",
		Short:         "Fake da API Ubersmith para testes de integração",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(opts.envFile)
		},
		// sem subcomando, sobe o servidor
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts.configPath)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("CONFIG_FILE_PATH"), "Arquivo de configuração (local, s3:// ou dynamodb://)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Arquivo .env carregado antes da configuração")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(fixturesCmd(opts))
	rootCmd.AddCommand(validateCmd(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// loadEnvFile carrega o .env sem sobrescrever variáveis já definidas. Arquivo ausente é ignorado.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("falha ao ler %s: %w", path, err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Mostra a versão",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fakeubersmith %s\n", Version)
		},
	}
}
