package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Modeva-Ecommerce/modeva-discovery/config"
	"github.com/Modeva-Ecommerce/modeva-discovery/discovery"
	"github.com/Modeva-Ecommerce/modeva-discovery/models"
	"github.com/Modeva-Ecommerce/modeva-discovery/services"
)

func init() {
	_ = godotenv.Load()
}

type options struct {
	baseURL      string
	query        string
	categories   []string
	brands       []string
	minPrice     float64
	maxPrice     float64
	rating       int
	inStock      bool
	freeShipping bool
	country      string
	urlParams    string
	sort         string
	pages        int
	limit        int
	timeout      time.Duration
	verbose      bool
}

func main() {
	cfg := config.LoadDiscoveryConfig()
	opts := options{}

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Browse the catalog the way the storefront grid does",
		Long: `discover composes a search from filters, URL parameters and sort,
fetches the first page and keeps scrolling until --pages pages are shown
or the catalog runs out.`,
		Example: `  discover --q shoes --category Footwear --min-price 10 --url "minPrice=50" --sort newest --pages 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if opts.verbose {
				logger = config.InitLogger()
				defer config.SyncLogger()
			}
			gateway := services.NewHTTPSearchGateway(opts.baseURL,
				services.WithRateLimit(cfg.GatewayRPS, cfg.GatewayBurst),
				services.WithGatewayLogger(logger))

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return run(ctx, gateway, opts, logger, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.baseURL, "base-url", cfg.CatalogBaseURL, "catalog API base URL")
	flags.StringVar(&opts.query, "q", "", "search text from the header box")
	flags.StringSliceVar(&opts.categories, "category", nil, "sidebar categories (repeatable)")
	flags.StringSliceVar(&opts.brands, "brand", nil, "sidebar brands (repeatable)")
	flags.Float64Var(&opts.minPrice, "min-price", 0, "sidebar minimum price")
	flags.Float64Var(&opts.maxPrice, "max-price", 0, "sidebar maximum price")
	flags.IntVar(&opts.rating, "rating", 0, "sidebar minimum rating (1-5)")
	flags.BoolVar(&opts.inStock, "in-stock", false, "only products in stock")
	flags.BoolVar(&opts.freeShipping, "free-shipping", false, "only products with free shipping")
	flags.StringVar(&opts.country, "country", "", "shopper country code")
	flags.StringVar(&opts.urlParams, "url", "", "page URL query string; its fields override the sidebar")
	flags.StringVar(&opts.sort, "sort", string(models.DefaultSort), "trending, newest, price_asc, price_desc, rating or popular")
	flags.IntVar(&opts.pages, "pages", 3, "stop after this many pages")
	flags.IntVar(&opts.limit, "limit", cfg.PageLimit, "cards per page")
	flags.DurationVar(&opts.timeout, "timeout", time.Minute, "give up after this long")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log gateway traffic")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run drives one Engine: page 1, then a simulated scroll per further page.
func run(ctx context.Context, gateway discovery.Gateway, opts options, logger *zap.Logger, out io.Writer) error {
	params, err := url.ParseQuery(strings.TrimPrefix(opts.urlParams, "?"))
	if err != nil {
		return fmt.Errorf("parse --url: %w", err)
	}

	state := models.FilterState{
		Query:   opts.query,
		Country: opts.country,
		Options: models.FilterOptions{
			PriceRange:   models.PriceRange{Min: opts.minPrice, Max: opts.maxPrice},
			Categories:   opts.categories,
			Brands:       opts.brands,
			Rating:       opts.rating,
			InStock:      opts.inStock,
			FreeShipping: opts.freeShipping,
		},
	}

	engine := discovery.NewEngine(gateway, discovery.EngineConfig{PageLimit: opts.limit, Logger: logger})
	defer engine.Close()

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	engine.Start(params, state, opts.sort)

	shown := 0
	printedHeader := false
	for {
		snap, err := engine.Settled(ctx)
		if err != nil {
			return fmt.Errorf("waiting for results: %w", err)
		}
		if !printedHeader {
			fmt.Fprintf(out, "%s %s\n", cyan("Search:"), snap.Request.Values().Encode())
			printedHeader = true
		}

		if snap.Status == discovery.StatusError {
			fmt.Fprintf(out, "%s %s (%s, page %d)\n", red("Error:"), snap.Error.Message, snap.Error.Kind, snap.Error.Page)
			return errors.New(string(snap.Error.Kind))
		}

		fmt.Fprintf(out, "\n%s\n", cyan(fmt.Sprintf("Page %d of %d", snap.CurrentPage, snap.TotalPages)))
		for _, p := range snap.Items[shown:] {
			fmt.Fprintf(out, "  %s  %-40s %s %s\n", gray(p.ID), p.Name, green(fmt.Sprintf("%.2f", p.Price)), yellow(fmt.Sprintf("★%.1f", p.Rating)))
		}
		shown = len(snap.Items)
		fmt.Fprintf(out, "%s\n", gray(fmt.Sprintf("%d of %d products loaded", shown, snap.TotalCount)))

		if !snap.HasMore {
			fmt.Fprintf(out, "\n%s\n", green("End of results"))
			return nil
		}
		if snap.CurrentPage >= opts.pages {
			return nil
		}

		// Scroll: the sentinel leaves the lead zone, then comes back.
		engine.ObserveDistance(10 * discovery.DefaultLeadDistance)
		if !engine.ObserveDistance(0) {
			return errors.New("scroll did not request another page")
		}
	}
}
