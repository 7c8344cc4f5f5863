package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/jrsteele09/go-shopfront-client/rest"
)

type cartCommand struct {
	app *App
}

func (*cartCommand) Name() string           { return "cart" }
func (*cartCommand) Synopsis() string       { return "show the cart" }
func (*cartCommand) Usage() string          { return "cart\n" }
func (*cartCommand) SetFlags(*flag.FlagSet) {}

func (c *cartCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.app.restoreSession(ctx)

	cart, res := c.app.Session.CartItems(ctx)
	if !res.Success {
		return c.app.report(res)
	}

	if len(cart.Items) == 0 {
		c.app.printf("Your cart is empty.\n")
		return subcommands.ExitSuccess
	}
	for _, item := range cart.Items {
		c.app.printf("%-12s %-30s x%-3d %8.2f\n", item.ProductID, item.Name, item.Quantity, item.Price)
	}
	c.app.printf("total: %.2f\n", cart.Total)
	return subcommands.ExitSuccess
}

type cartAddCommand struct {
	app       *App
	productID string
	quantity  int
}

func (*cartAddCommand) Name() string     { return "cart-add" }
func (*cartAddCommand) Synopsis() string { return "add a product to the cart" }
func (*cartAddCommand) Usage() string    { return "cart-add -product <product-id> [-qty <n>]\n" }

func (c *cartAddCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.productID, "product", "", "product identifier")
	f.IntVar(&c.quantity, "qty", 1, "quantity")
}

func (c *cartAddCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.productID == "" || c.quantity < 1 {
		c.app.printf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	c.app.restoreSession(ctx)
	return c.app.report(c.app.Session.AddToCart(ctx, c.productID, c.quantity))
}

type checkoutCommand struct {
	app       *App
	addressID string
	payment   string
}

func (*checkoutCommand) Name() string     { return "checkout" }
func (*checkoutCommand) Synopsis() string { return "place an order from the cart" }
func (*checkoutCommand) Usage() string {
	return "checkout -address <address-id> [-payment <method>]\n"
}

func (c *checkoutCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addressID, "address", "", "shipping address identifier")
	f.StringVar(&c.payment, "payment", "", "payment method")
}

func (c *checkoutCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.addressID == "" {
		c.app.printf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	c.app.restoreSession(ctx)

	order, res := c.app.Session.CreateOrder(ctx, rest.OrderRequest{
		AddressID:     c.addressID,
		PaymentMethod: c.payment,
	})
	if !res.Success {
		return c.app.report(res)
	}

	c.app.printf("Order %s placed (%s), total %.2f\n", order.ID, order.Status, order.Total)
	return subcommands.ExitSuccess
}

type ordersCommand struct {
	app *App
}

func (*ordersCommand) Name() string           { return "orders" }
func (*ordersCommand) Synopsis() string       { return "list past orders" }
func (*ordersCommand) Usage() string          { return "orders\n" }
func (*ordersCommand) SetFlags(*flag.FlagSet) {}

func (c *ordersCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.app.restoreSession(ctx)

	orders, res := c.app.Session.Orders(ctx)
	if !res.Success {
		return c.app.report(res)
	}

	if len(orders) == 0 {
		c.app.printf("No orders yet.\n")
		return subcommands.ExitSuccess
	}
	for _, o := range orders {
		c.app.printf("%-12s %-10s %8.2f %s\n", o.ID, o.Status, o.Total, o.CreatedAt.Format("2006-01-02"))
	}
	return subcommands.ExitSuccess
}
