package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raywall/fake-ubersmith/pkg/config"
	"github.com/raywall/fake-ubersmith/pkg/engine"
	"github.com/spf13/cobra"
)

func validateCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Valida a configuração (estrutura, regras CEL e combinações)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🔍 Analisando configuração: %s ...\n", opts.configPath)

			// 1. Load (Validação Estrutural)
			cfg, err := config.NewLoader().Load(cmd.Context(), opts.configPath)
			if err != nil {
				return fmt.Errorf("❌ erro de carregamento/estrutura: %w", err)
			}

			// 2. Analyze (Validação Lógica/Semântica)
			report, err := engine.Analyze(cfg)
			if err != nil {
				return fmt.Errorf("❌ erro interno do analisador: %w", err)
			}

			if asJSON {
				raw, _ := json.Marshal(report)
				fmt.Fprintln(out, string(raw))
			} else {
				for _, w := range report.Warnings {
					fmt.Fprintf(out, "⚠️  %s\n", w)
				}
			}

			if !report.Valid {
				return fmt.Errorf("❌ a configuração contém erros lógicos:\n - %s", strings.Join(report.Errors, "\n - "))
			}

			if !asJSON {
				fmt.Fprintln(out, "✅ Configuração válida")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Saída em JSON")
	return cmd
}
