package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/jrsteele09/go-shopfront-client/rest"
)

// Catalogue commands talk to the backend directly; browsing needs no
// session, matching the storefront's anonymous product pages.

type productsCommand struct {
	app    *App
	search string
}

func (*productsCommand) Name() string     { return "products" }
func (*productsCommand) Synopsis() string { return "list or search the catalogue" }
func (*productsCommand) Usage() string    { return "products [-search <query>]\n" }

func (c *productsCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "search", "", "free-text search query")
}

func (c *productsCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var (
		products []rest.Product
		err      error
	)
	if c.search != "" {
		products, err = c.app.API.SearchProducts(ctx, c.search)
	} else {
		products, err = c.app.API.Products(ctx)
	}
	if err != nil {
		c.app.Logger.Error().Err(err).Msg("could not fetch products")
		c.app.printf("Could not fetch products.\n")
		return subcommands.ExitFailure
	}

	if len(products) == 0 {
		c.app.printf("No products found.\n")
		return subcommands.ExitSuccess
	}
	for _, p := range products {
		c.app.printf("%-12s %-30s %8.2f %s\n", p.ID, p.Name, p.Price, p.Currency)
	}
	return subcommands.ExitSuccess
}

type productCommand struct {
	app *App
	id  string
}

func (*productCommand) Name() string     { return "product" }
func (*productCommand) Synopsis() string { return "show one product" }
func (*productCommand) Usage() string    { return "product -id <product-id>\n" }

func (c *productCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "product identifier")
}

func (c *productCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		c.app.printf("%s", c.Usage())
		return subcommands.ExitUsageError
	}

	p, err := c.app.API.Product(ctx, c.id)
	if err != nil {
		if msg, ok := rest.BackendMessage(err); ok {
			c.app.printf("%s\n", msg)
		} else {
			c.app.printf("Could not fetch product.\n")
		}
		return subcommands.ExitFailure
	}

	c.app.printf("%s\n", p.Name)
	if p.Description != "" {
		c.app.printf("%s\n", p.Description)
	}
	c.app.printf("price: %.2f %s\n", p.Price, p.Currency)
	c.app.printf("stock: %d\n", p.Stock)
	return subcommands.ExitSuccess
}
