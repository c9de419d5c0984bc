package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/basket/internal/catalog"
	"github.com/mesh-intelligence/basket/pkg/types"
)

// catalogTimeout bounds the one-shot restaurant catalog load.
const catalogTimeout = 15 * time.Second

// addFilterFlags binds the shared filter and sort flags to p.
func addFilterFlags(cmd *cobra.Command, p *catalog.PredicateSet) {
	f := cmd.Flags()
	f.StringVar(&p.Search, "search", "", "case-insensitive name search")
	f.StringSliceVar(&p.PriceBuckets, "price", nil, "price buckets: under-1000, 1000-2500, above-2500")
	f.StringSliceVar(&p.RatingTiers, "rating", nil, "rating tiers: 3plus, 4plus")
	f.StringVar(&p.SortKey, "sort", "", "sort by rating, delivery or price")
	f.StringVar(&p.Where, "where", "", `filter expression, e.g. 'price < 2000 && rating >= 4'`)
}

// query runs the catalog query, mapping bad predicates to user errors.
func query(items []types.CatalogItem, p catalog.PredicateSet) ([]types.CatalogItem, error) {
	got, err := catalog.Query(items, p)
	if errors.Is(err, types.ErrUnknownSortKey) || errors.Is(err, types.ErrInvalidPredicate) {
		return nil, userError("%w", err)
	}
	return got, err
}

// catalogSource returns the restaurant source from flag or config.
func (a *app) catalogSource(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.GetString(cfgKeyCatalogSource)
}

// loadRestaurants makes a single attempt to load the restaurant catalog.
func (a *app) loadRestaurants(ctx context.Context, source string) ([]types.CatalogItem, error) {
	if source == "" {
		return nil, userError("no restaurant catalog: pass --source or set %s in config.yaml", cfgKeyCatalogSource)
	}
	ctx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()

	items, err := catalog.Load(ctx, source, catalog.WithLoadLogger(a.logger.Named("catalog")))
	if err != nil {
		return nil, sysError("failed to load catalog: %w", err)
	}
	return items, nil
}

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the product catalog",
	}

	var p catalog.PredicateSet
	list := &cobra.Command{
		Use:   "list",
		Short: "List products matching the filters",
		Example: `  basket products list --search headphones
  basket products list --price under-1000,above-2500 --rating 4plus --sort rating`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := query(catalog.Products(), p)
			if err != nil {
				return err
			}
			if a.jsonMode {
				return printJSON(out(cmd), items)
			}
			printProducts(out(cmd), items)
			return nil
		},
	}
	addFilterFlags(list, &p)
	cmd.AddCommand(list)
	return cmd
}

func newRestaurantsCmd(a *app) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "restaurants",
		Short: "Browse the restaurant catalog",
	}
	cmd.PersistentFlags().StringVar(&source, "source", "", "restaurants JSON file or http(s) URL (default: catalog.source)")

	var p catalog.PredicateSet
	list := &cobra.Command{
		Use:   "list",
		Short: "List restaurants matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.loadRestaurants(cmd.Context(), a.catalogSource(source))
			if err != nil {
				return err
			}
			got, err := query(items, p)
			if err != nil {
				return err
			}
			a.logger.Debug("restaurants filtered", zap.Int("total", len(items)), zap.Int("shown", len(got)))
			if a.jsonMode {
				return printJSON(out(cmd), got)
			}
			printRestaurants(out(cmd), got)
			return nil
		},
	}
	addFilterFlags(list, &p)
	list.Flags().StringVar(&p.Cuisine, "cuisine", "", "exact cuisine")

	cuisines := &cobra.Command{
		Use:   "cuisines",
		Short: "List the cuisines available for filtering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.loadRestaurants(cmd.Context(), a.catalogSource(source))
			if err != nil {
				return err
			}
			all := catalog.Cuisines(items)
			if a.jsonMode {
				return printJSON(out(cmd), all)
			}
			for _, c := range all {
				fmt.Fprintln(out(cmd), c)
			}
			return nil
		},
	}

	menu := &cobra.Command{
		Use:   "menu <restaurant-id>",
		Short: "Show a restaurant's menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.loadRestaurants(cmd.Context(), a.catalogSource(source))
			if err != nil {
				return err
			}
			r, ok := catalog.NewRestaurantIndex(items).Restaurant(args[0])
			if !ok {
				return userError("unknown restaurant %q", args[0])
			}
			if a.jsonMode {
				return printJSON(out(cmd), r)
			}
			printMenu(out(cmd), r)
			return nil
		},
	}

	cmd.AddCommand(list, cuisines, menu)
	return cmd
}
