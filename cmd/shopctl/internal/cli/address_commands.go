package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/jrsteele09/go-shopfront-client/rest"
)

type addressesCommand struct {
	app *App
}

func (*addressesCommand) Name() string           { return "addresses" }
func (*addressesCommand) Synopsis() string       { return "list saved addresses" }
func (*addressesCommand) Usage() string          { return "addresses\n" }
func (*addressesCommand) SetFlags(*flag.FlagSet) {}

func (c *addressesCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.app.restoreSession(ctx)

	addrs, res := c.app.Session.Addresses(ctx)
	if !res.Success {
		return c.app.report(res)
	}

	if len(addrs) == 0 {
		c.app.printf("No saved addresses.\n")
		return subcommands.ExitSuccess
	}
	for _, a := range addrs {
		c.app.printf("%-12s %s, %s %s, %s\n", a.ID, a.Line1, a.City, a.PostalCode, a.Country)
	}
	return subcommands.ExitSuccess
}

type addressAddCommand struct {
	app  *App
	addr rest.Address
}

func (*addressAddCommand) Name() string     { return "address-add" }
func (*addressAddCommand) Synopsis() string { return "save a new address" }
func (*addressAddCommand) Usage() string {
	return "address-add -line1 <street> -city <city> -postal <code> -country <country> [-line2 ...] [-state ...] [-label ...]\n"
}

func (c *addressAddCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr.Label, "label", "", "label, e.g. home or work")
	f.StringVar(&c.addr.Line1, "line1", "", "street address")
	f.StringVar(&c.addr.Line2, "line2", "", "street address, second line")
	f.StringVar(&c.addr.City, "city", "", "city")
	f.StringVar(&c.addr.State, "state", "", "state or region")
	f.StringVar(&c.addr.PostalCode, "postal", "", "postal code")
	f.StringVar(&c.addr.Country, "country", "", "country")
	f.StringVar(&c.addr.Phone, "phone", "", "contact phone for delivery")
}

func (c *addressAddCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.addr.Line1 == "" || c.addr.City == "" || c.addr.PostalCode == "" || c.addr.Country == "" {
		c.app.printf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	c.app.restoreSession(ctx)

	saved, res := c.app.Session.AddAddress(ctx, c.addr)
	if !res.Success {
		return c.app.report(res)
	}

	c.app.printf("Saved address %s\n", saved.ID)
	return subcommands.ExitSuccess
}

type addressDeleteCommand struct {
	app *App
	id  string
}

func (*addressDeleteCommand) Name() string     { return "address-delete" }
func (*addressDeleteCommand) Synopsis() string { return "delete a saved address" }
func (*addressDeleteCommand) Usage() string    { return "address-delete -id <address-id>\n" }

func (c *addressDeleteCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "address identifier")
}

func (c *addressDeleteCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		c.app.printf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	c.app.restoreSession(ctx)

	res := c.app.Session.DeleteAddress(ctx, c.id)
	if res.Success {
		c.app.printf("Deleted address %s\n", c.id)
	}
	return c.app.report(res)
}
