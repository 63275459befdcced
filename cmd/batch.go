package main

import (
	"bufio"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var batchFile string

var batchCmd = &cobra.Command{
	Use:   "batch [url...]",
	Short: "Render a batch of URLs and print their text",
	Long:  "Loads each URL in its own browser context and prints one result per URL as JSON. URLs come from arguments or --file (one per line, - for stdin).",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		urls := append([]string{}, args...)
		if batchFile != "" {
			fromFile, err := readURLFile(batchFile)
			if err != nil {
				return err
			}
			urls = append(urls, fromFile...)
		}
		if len(urls) == 0 {
			return eris.New("batch: no urls given")
		}

		env, err := initCrawler(ctx, "crawl")
		if err != nil {
			return err
		}
		defer env.Close()

		results := env.Orchestrator.CrawlURLs(ctx, urls)
		failed := 0
		for _, r := range results {
			if !r.Success {
				failed++
			}
		}
		zap.L().Info("batch complete", zap.Int("urls", len(urls)), zap.Int("failed", failed))
		return writeJSON(os.Stdout, results)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "file with one url per line (- for stdin)")
	rootCmd.AddCommand(batchCmd)
}

func readURLFile(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "batch: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		r = f
	}
	return parseURLList(r)
}

// parseURLList returns the non-blank, non-comment lines of r.
func parseURLList(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, eris.Wrap(sc.Err(), "batch: read urls")
}
