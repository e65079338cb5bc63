package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"achievement-engine/catalog"
	"achievement-engine/config"
	"achievement-engine/services"

	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate achievement catalogs",
	}
	cmd.AddCommand(catalogValidateCmd(), catalogListCmd(), catalogExportCmd())
	return cmd
}

func catalogValidateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a YAML catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			unknown := unknownMetrics(c)
			for _, u := range unknown {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", u)
			}
			if strict && len(unknown) > 0 {
				return fmt.Errorf("%d requirement(s) use unknown metrics", len(unknown))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: catalog %s, %d achievements\n", c.Version(), c.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a requirement names an unknown metric")
	return cmd
}

// unknownMetrics lists requirements whose metric always resolves to 0.
func unknownMetrics(c *catalog.Catalog) []string {
	var out []string
	for _, a := range c.All() {
		for _, r := range a.Requirements {
			if !services.IsKnownMetric(r.Metric) {
				out = append(out, fmt.Sprintf("%s: unknown metric %q", a.ID, r.Metric))
			}
		}
	}
	return out
}

func catalogListCmd() *cobra.Command {
	var (
		file       string
		showHidden bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the catalog the service would load",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if file != "" {
				cfg.CatalogFile = file
				cfg.CatalogS3Bucket = ""
			}
			c, source, err := loadCatalog(context.Background(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog %s from %s\n\n", c.Version(), source)
			return writeCatalogTable(cmd.OutOrStdout(), c, showHidden)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Catalog file (overrides CATALOG_FILE and the bucket)")
	cmd.Flags().BoolVar(&showHidden, "hidden", false, "Include hidden achievements")
	return cmd
}

func writeCatalogTable(w io.Writer, c *catalog.Catalog, showHidden bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tRARITY\tPOINTS\tHIDDEN")
	for _, a := range c.All() {
		if a.Hidden && !showHidden {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n",
			a.ID, a.Name, catalog.CategoryLabel(a.Category), catalog.RarityLabel(a.Rarity),
			strconv.Itoa(a.Points), a.Hidden)
	}
	return tw.Flush()
}

func catalogExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the builtin catalog as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := catalog.Encode(catalog.Default())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
