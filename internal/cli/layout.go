package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinicpulse/clinicpulse/internal/database"
	"github.com/clinicpulse/clinicpulse/internal/ecosystem"
	"github.com/clinicpulse/clinicpulse/internal/models"
)

var (
	layoutCollapsed string
	layoutFormat    string
	layoutSample    bool
)

var layoutCmd = &cobra.Command{
	Use:   "layout [--collapsed category-0,...] [--format table|json|yaml]",
	Short: "Print the ecosystem map layout",
	Long: `Compute the radial ecosystem map for the clinic and print every node.

Assets are read from the configured database. Without a database, or with
--sample, a built-in demo clinic is used.

Supported formats:
  table  - aligned columns (default on a terminal)
  json   - graph as JSON (default when piped)
  yaml   - graph as YAML

Example:
  clinicpulse layout --collapsed category-1,category-3
  clinicpulse layout --sample --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var assets []models.Asset
		if layoutSample || cfg.DatabaseURL == "" {
			assets = sampleAssets(time.Now())
		} else {
			assets, err = loadAssets(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
		}

		return runLayout(cmd.OutOrStdout(), cfg.ClinicName, assets, layoutCollapsed, resolveFormat(layoutFormat))
	},
}

func loadAssets(ctx context.Context, databaseURL string) ([]models.Asset, error) {
	if database.DB == nil {
		if err := database.Open(databaseURL); err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		defer func() { _ = database.Close() }()
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return database.ListAssets(ctx)
}

func runLayout(w io.Writer, clinicName string, assets []models.Asset, collapsed, format string) error {
	in := ecosystem.NewInput(clinicName, ecosystem.DefaultCategories(assets), ecosystem.ParseCollapsed(collapsed))
	graph, err := ecosystem.Compute(in)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return outputJSON(w, graph)
	case "yaml":
		return outputYAML(w, graph)
	case "table":
		return outputLayoutTable(w, graph)
	default:
		return fmt.Errorf("invalid format: %s", format)
	}
}

func outputLayoutTable(w io.Writer, graph ecosystem.Graph) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tKIND\tLABEL\tCATEGORY\tSTATUS\tX\tY")
	for _, n := range graph.Nodes {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f\t%.1f\n",
			n.ID, n.Kind, n.Label, n.Category, n.Status, n.Position.X, n.Position.Y)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d nodes, %d edges\n", len(graph.Nodes), len(graph.Edges))
	return err
}

func init() {
	layoutCmd.Flags().StringVar(&layoutCollapsed, "collapsed", "", "Comma-separated category ids whose assets are hidden")
	layoutCmd.Flags().StringVar(&layoutFormat, "format", "", "Output format: table, json, yaml")
	layoutCmd.Flags().BoolVar(&layoutSample, "sample", false, "Use the built-in demo clinic instead of the database")
}
