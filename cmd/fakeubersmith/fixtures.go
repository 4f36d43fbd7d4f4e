package main

import (
	"fmt"
	"sort"

	"github.com/raywall/fake-ubersmith/pkg/config"
	"github.com/raywall/fake-ubersmith/pkg/fixtures"
	"github.com/raywall/fake-ubersmith/pkg/store"
	"github.com/spf13/cobra"
)

func fixturesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Operações sobre fontes de fixtures",
	}
	cmd.AddCommand(fixturesCheckCmd(opts))
	return cmd
}

func fixturesCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [source]",
		Short: "Lê e aplica uma fonte de fixtures num Store vazio e mostra as contagens",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.NewLoader().Load(ctx, opts.configPath)
			if err != nil {
				return err
			}

			source := ""
			if len(args) == 1 {
				source = args[0]
			}

			loader := fixtures.NewLoader(store.New(), cfg.Fixtures)
			doc, err := loader.Load(ctx, source)
			if err != nil {
				return fmt.Errorf("❌ fixtures inválidas: %w", err)
			}

			counts := doc.Counts()
			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintf(out, "%-20s %d\n", name, counts[name])
			}
			fmt.Fprintln(out, "✅ Fixtures válidas")
			return nil
		},
	}
}
