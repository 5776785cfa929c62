package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/scrapers"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		category string
		mirror   bool
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "import <product-url>...",
		Short: "Scrape product pages and print the garments they would import",
		Long: `Scrape one or more product pages with the registered shop scrapers and
print the resulting product and garment. With --mirror the product images are
copied to the configured S3 bucket as the server would do.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c models.Category
			if category != "" {
				parsed, err := models.ParseCategory(category)
				if err != nil {
					return err
				}
				c = parsed
			}

			failed := 0
			for _, u := range args {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				err := importOne(ctx, u, c, mirror)
				cancel()
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", u, err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d imports failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Wardrobe category (shirt, suit, jacket, trousers, fabric)")
	cmd.Flags().BoolVar(&mirror, "mirror", false, "Mirror product images to S3")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "Timeout per product page")
	return cmd
}

func importOne(ctx context.Context, url string, category models.Category, mirror bool) error {
	if mirror {
		garment, product, err := scrapers.ImportGarment(ctx, url, category)
		if err != nil {
			return err
		}
		return printImport(product, garment)
	}

	scraper, resolved, err := scrapers.GetScraper(ctx, url)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Scraper: %T, resolved URL: %s\n", scraper, resolved)

	product, err := scraper.ScrapeProduct(ctx, resolved)
	if err != nil {
		return err
	}
	garment, err := scrapers.GarmentFromProduct(product, category)
	if err != nil {
		return err
	}
	return printImport(product, garment)
}

func printImport(product *models.Product, garment models.Garment) error {
	return printJSON(os.Stdout, map[string]any{
		"product": product,
		"garment": garment,
	})
}
