package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssgraphics/printsite/content"
)

var catalogFile string

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect the site catalog",
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List portfolio samples and their categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCatalog()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tID\tCATEGORY\tTITLE")
		for i, s := range c.Samples {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, s.ID, s.Category, s.Title)
		}
		return w.Flush()
	},
}

var contentCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCatalog()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d services, %d machines, %d filters, %d samples\n",
			len(c.Services), len(c.Equipment), len(c.Filters), len(c.Samples))
		return nil
	},
}

// loadCatalog reads --file, or the embedded catalog when unset. Both paths
// validate.
func loadCatalog() (*content.Catalog, error) {
	if catalogFile == "" {
		return content.Default()
	}
	return content.Load(catalogFile)
}

func init() {
	contentCmd.PersistentFlags().StringVar(&catalogFile, "file", "", "catalog YAML (default: embedded catalog)")
	contentCmd.AddCommand(contentListCmd, contentCheckCmd)
	rootCmd.AddCommand(contentCmd)
}
