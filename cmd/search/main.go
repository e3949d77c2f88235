package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/maltedev/marketplace-search/internal/app"
	"github.com/maltedev/marketplace-search/internal/config"
	"github.com/maltedev/marketplace-search/internal/models"
	"github.com/maltedev/marketplace-search/internal/search"
	"github.com/maltedev/marketplace-search/internal/storage"
	"github.com/maltedev/marketplace-search/pkg/logger"
)

func main() {
	var (
		query       = flag.String("q", "", "Search query")
		site        = flag.String("site", "", "Marketplace to search (ebay, amazon)")
		limit       = flag.Int("limit", 0, "Number of ranked results to keep (default from SEARCH_RESULT_LIMIT)")
		outputFile  = flag.String("output", "", "Output CSV file (optional)")
		archiveFile = flag.String("archive", "", "JSON file collecting past runs (optional)")
		dumpDir     = flag.String("dump", "", "Directory for raw page dumps (optional)")
		useBrowser  = flag.Bool("browser", false, "Fetch pages with a headless browser")
	)
	flag.Parse()

	if *query == "" {
		fmt.Println("Please provide a search query with -q")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *useBrowser {
		cfg.HTTP.UseBrowser = true
	}
	if *dumpDir != "" {
		cfg.Output.DumpDir = *dumpDir
	}
	if *archiveFile != "" {
		cfg.Output.ArchivePath = *archiveFile
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	run, err := a.Service.Search(ctx, search.Request{Site: *site, Query: *query, Limit: *limit})
	if err != nil {
		logger.Error("Search failed", "error", err)
		a.Close()
		os.Exit(1)
	}

	printRun(run)

	if *outputFile != "" {
		if err := storage.NewCSVWriter(*outputFile).Write(run.Items); err != nil {
			logger.Error("Failed to save CSV", "error", err)
		} else {
			logger.Info("Results saved to CSV", "file", *outputFile)
		}
	}

	if cfg.Output.ArchivePath != "" {
		archive, err := storage.NewArchive(cfg.Output.ArchivePath, cfg.Output.ArchiveSize)
		if err == nil {
			err = archive.Add(run)
		}
		if err != nil {
			logger.Error("Failed to archive run", "error", err)
		}
	}
}

func printRun(run *models.SearchRun) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("%s: %q", run.Site, run.Query))
	t.AppendHeader(table.Row{"#", "Title", "Price", "Sold", "Feedback", "Rating", "URL"})

	for i, item := range run.Items {
		sold := "-"
		if item.QuantitySold != nil {
			sold = item.QuantitySold.String()
		}
		t.AppendRow(table.Row{
			i + 1,
			item.Title,
			optional(item.PriceDollars, "$%.2f"),
			sold,
			optional(item.PositiveFeedbackPercentage, "%.1f%%"),
			optional(item.RatingAverage, "%.2f"),
			item.ItemURL,
		})
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d shown, %d scraped, %d dropped", len(run.Items), run.Scraped, run.Dropped)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
