package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hypoavg/internal"
	"hypoavg/internal/aggregate"
	"hypoavg/internal/config"
	"hypoavg/internal/container"
	"hypoavg/internal/report"
	"hypoavg/internal/schema"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "hypoavg-cli",
		Short:         "Recompute, export and administer hypothesis averages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRecomputeCmd(),
		newExportCmd(),
		newSchemaCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(ctx, cfg, nil, internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)))
}

func newRecomputeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Run one aggregation pass synchronously",
		Long: `Recompute every variant average and hypothesis rollup from the raw observations
under DATA_DIR and publish them, then print a summary of the pass.

Example: hypoavg-cli recompute --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			result, err := c.Engine.Run(cmd.Context())
			if err != nil {
				return err
			}
			return printPass(cmd, result, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the pass summary as JSON")
	return cmd
}

func printPass(cmd *cobra.Command, r *aggregate.PassResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(out, "Hypotheses:     %d\n", r.Hypotheses)
	fmt.Fprintf(out, "Variants:       %d\n", r.Variants)
	fmt.Fprintf(out, "Observations:   %d\n", r.Observations)
	fmt.Fprintf(out, "Malformed:      %d\n", r.Malformed)
	fmt.Fprintf(out, "Published:      %d\n", r.Published)
	fmt.Fprintf(out, "Write failures: %d\n", r.WriteFailures)
	for _, h := range r.Unnormalized {
		fmt.Fprintf(out, "No schema:      %s\n", h)
	}
	fmt.Fprintf(out, "Duration:       %s\n", r.Duration)
	return nil
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export published averages to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			published, err := aggregate.CollectPublished(cfg.Storage.DataDir)
			if err != nil {
				return err
			}
			if err := report.Export(published, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d hypotheses to %s\n", len(published), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "averages.xlsx", "Destination workbook")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and import evidence schemas",
	}
	cmd.AddCommand(newSchemaShowCmd(), newSchemaImportCmd())
	return cmd
}

func newSchemaShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <hypothesis>",
		Short: "Print the evidence schema the aggregator would use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			s, err := c.Schemas.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(schema.Document{Evidence: s})
		},
	}
}

func newSchemaImportCmd() *cobra.Command {
	var hypothesis string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store a schema file in the schema database",
		Long: `Parse a JSON or YAML schema document and replace the hypothesis' schema in
the database named by SCHEMA_DATABASE_URL.

Example: hypoavg-cli schema import schemas/resurrection.yaml --hypothesis resurrection`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			store, ok := c.SchemaAdmin()
			if !ok {
				return fmt.Errorf("SCHEMA_DATABASE_URL is not set; file schemas are edited in place")
			}
			n, err := schema.ImportFile(cmd.Context(), store, hypothesis, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d evidence entries for %s\n", n, hypothesis)
			return nil
		},
	}

	cmd.Flags().StringVar(&hypothesis, "hypothesis", "", "Hypothesis the schema belongs to")
	_ = cmd.MarkFlagRequired("hypothesis")
	return cmd
}
