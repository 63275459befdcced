package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/interview-crawler/internal/model"
)

var (
	crawlCategory string
	crawlKeywords []string
	crawlSites    []string
	crawlMax      int
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl interview questions for one category",
	Long:  "Runs one question crawl against the target sites and prints the result as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initCrawler(ctx, "crawl")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Orchestrator.Crawl(ctx, model.CrawlRequest{
			Category:     crawlCategory,
			Keywords:     crawlKeywords,
			TargetSites:  crawlSites,
			MaxQuestions: crawlMax,
		})
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, res)
	},
}

func init() {
	crawlCmd.Flags().StringVar(&crawlCategory, "category", model.CategoryFrontend, "question category")
	crawlCmd.Flags().StringSliceVar(&crawlKeywords, "keywords", nil, "search keywords (default from category)")
	crawlCmd.Flags().StringSliceVar(&crawlSites, "sites", []string{"nowcoder", "juejin"}, "target site ids")
	crawlCmd.Flags().IntVar(&crawlMax, "max", 20, "max questions to return")
	rootCmd.AddCommand(crawlCmd)
}
