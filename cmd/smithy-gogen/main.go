// Command smithy-gogen generates a Go client from a Smithy JSON AST model.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/smithy-lang/smithy-gogen/config"
	"github.com/smithy-lang/smithy-gogen/generator"
	"github.com/smithy-lang/smithy-gogen/integration"
	"github.com/smithy-lang/smithy-gogen/logging"
	"github.com/smithy-lang/smithy-gogen/model"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "smithy-gogen",
		Short:         "Generate Go service clients from Smithy models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(generateCmd())
	return root
}

func generateCmd() *cobra.Command {
	var (
		modelPath    string
		settingsPath string
		outDir       string
		noHeader     bool
		keepGoing    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run code generation for a service",
		RunE: func(cmd *cobra.Command, args []string) error {
			// optional .env overrides, e.g. SMITHY_GOGEN_OUT
			_ = godotenv.Load()
			if v := os.Getenv("SMITHY_GOGEN_OUT"); v != "" && !cmd.Flags().Changed("out") {
				outDir = v
			}

			settings, err := config.Load(settingsPath)
			if err != nil {
				return err
			}
			if noHeader {
				settings.NoHeader = true
			}

			f, err := os.Open(modelPath)
			if err != nil {
				return fmt.Errorf("failed to open model: %w", err)
			}
			defer f.Close()

			m, err := model.Load(f)
			if err != nil {
				return err
			}

			pipeline := integration.NewPipeline(integration.PaginatorValidation{})
			gen := generator.New(settings, pipeline)
			gen.Logger = logging.NewStandardLogger(cmd.ErrOrStderr())
			gen.ContinueOnError = keepGoing

			manifest, err := gen.Run(m, outDir)
			if err != nil {
				return err
			}
			for _, path := range manifest {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "model.json", "path to the Smithy JSON AST model")
	cmd.Flags().StringVar(&settingsPath, "settings", "smithy-gogen.yaml", "path to the generation settings (YAML or JSON)")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory for the generated module")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "omit the build stamp header for reproducible output")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue generating other operations after an operation fails")
	return cmd
}
