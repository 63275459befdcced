package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/interview-crawler/internal/adapter"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the configured search sites",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := adapter.Load(cfg.Crawl.SitesFile)
		if err != nil {
			return eris.Wrap(err, "load sites")
		}
		return printSites(os.Stdout, reg)
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}

func printSites(out io.Writer, reg *adapter.Registry) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSEARCH")
	for _, a := range reg.All() {
		c := a.Config()
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.SearchTemplate)
	}
	return w.Flush()
}
