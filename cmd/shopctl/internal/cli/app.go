// Package cli implements the shopctl subcommands. The commands are the view
// layer: they render results and decide navigation (telling the user to log
// in again) from the session manager's Result. The manager itself never
// navigates.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-shopfront-client/rest"
	"github.com/jrsteele09/go-shopfront-client/session"
)

// App bundles what every command needs.
type App struct {
	Session *session.Manager
	API     rest.Client
	Logger  zerolog.Logger
	Out     io.Writer
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

// report renders a session Result and maps it to an exit status.
func (a *App) report(res session.Result) subcommands.ExitStatus {
	if res.Message != "" {
		a.printf("%s\n", res.Message)
	}
	if res.Success {
		return subcommands.ExitSuccess
	}
	if res.RedirectToLogin {
		a.printf("Run `shopctl login` to authenticate.\n")
	}
	return subcommands.ExitFailure
}

// restoreSession restores a persisted session before an authenticated
// command runs. Commands still work through the Result contract afterwards,
// so a dead session surfaces as a redirect-to-login, not an error.
func (a *App) restoreSession(ctx context.Context) {
	if res := a.Session.Bootstrap(ctx); !res.Success {
		a.Logger.Debug().Str("message", res.Message).Msg("no session restored")
	}
}

// Register wires every shopctl command into the subcommands registry.
func Register(app *App) {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&loginCommand{app: app}, "account")
	subcommands.Register(&logoutCommand{app: app}, "account")
	subcommands.Register(&registerCommand{app: app}, "account")
	subcommands.Register(&verifyOTPCommand{app: app}, "account")
	subcommands.Register(&sendOTPCommand{app: app}, "account")
	subcommands.Register(&loginOTPCommand{app: app}, "account")
	subcommands.Register(&whoamiCommand{app: app}, "account")
	subcommands.Register(&forgotPasswordCommand{app: app}, "account")
	subcommands.Register(&resetPasswordCommand{app: app}, "account")

	subcommands.Register(&productsCommand{app: app}, "catalogue")
	subcommands.Register(&productCommand{app: app}, "catalogue")

	subcommands.Register(&cartCommand{app: app}, "shopping")
	subcommands.Register(&cartAddCommand{app: app}, "shopping")
	subcommands.Register(&checkoutCommand{app: app}, "shopping")
	subcommands.Register(&ordersCommand{app: app}, "shopping")

	subcommands.Register(&addressesCommand{app: app}, "addresses")
	subcommands.Register(&addressAddCommand{app: app}, "addresses")
	subcommands.Register(&addressDeleteCommand{app: app}, "addresses")
}
