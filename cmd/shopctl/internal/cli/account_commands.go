package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/jrsteele09/go-shopfront-client/rest"
)

type loginCommand struct {
	app      *App
	email    string
	password string
}

func (*loginCommand) Name() string     { return "login" }
func (*loginCommand) Synopsis() string { return "log in with email/phone and password" }
func (*loginCommand) Usage() string {
	return "login -id <email-or-phone> -password <password>\n"
}

func (c *loginCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "id", "", "email address or phone number")
	f.StringVar(&c.password, "password", "", "account password")
}

func (c *loginCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.email == "" || c.password == "" {
		c.app.printf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	res := c.app.Session.Login(ctx, c.email, c.password)
	if res.Success {
		if user := c.app.Session.CurrentUser(); user != nil {
			c.app.printf("Logged in as %s %s <%s>\n", user.FirstName, user.LastName, user.Email)
		}
	}
	return c.app.report(res)
}

type logoutCommand struct {
	app *App
}

func (*logoutCommand) Name() string           { return "logout" }
func (*logoutCommand) Synopsis() string       { return "log out and clear stored credentials" }
func (*logoutCommand) Usage() string          { return "logout\n" }
func (*logoutCommand) SetFlags(*flag.FlagSet) {}

func (c *logoutCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.app.restoreSession(ctx)
	return c.app.report(c.app.Session.Logout(ctx))
}

type registerCommand struct {
	app       *App
	firstName string
	lastName  string
	email     string
	phone     string
	password  string
}

func (*registerCommand) Name() string     { return "register" }
func (*registerCommand) Synopsis() string { return "create an account (an OTP is emailed to you)" }
func (*registerCommand) Usage() string {
	return "register -first <name> -last <name> -email <email> [-phone <phone>] -password <password>\n"
}

func (c *registerCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.firstName, "first", "", "first name")
	f.StringVar(&c.lastName, "last", "", "last name")
	f.StringVar(&c.email, "email", "", "email address")
	f.StringVar(&c.phone, "phone", "", "phone number")
	f.StringVar(&c.password, "password", "", "password")
}

func (c *registerCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.email == "" || c.password == "" {
		c.app.printf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	res := c.app.Session.Register(ctx, rest.Registration{
		FirstName: c.firstName,
		LastName:  c.lastName,
		Email:     c.email,
		Phone:     c.phone,
		Password:  c.password,
	})
	if res.Success {
		c.app.printf("Complete signup with: shopctl verify-otp -email %s -otp <code>\n", c.email)
	}
	return c.app.report(res)
}

type verifyOTPCommand struct {
	app   *App
	email string
	otp   string
}

func (*verifyOTPCommand) Name() string     { return "verify-otp" }
func (*verifyOTPCommand) Synopsis() string { return "complete signup with the emailed OTP" }
func (*verifyOTPCommand) Usage() string    { return "verify-otp -email <email> -otp <code>\n" }

func (c *verifyOTPCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "email address used to register")
	f.StringVar(&c.otp, "otp", "", "one-time password")
}

func (c *verifyOTPCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.email == "" || c.otp == "" {
		c.app.printf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	return c.app.report(c.app.Session.VerifyOTP(ctx, c.email, c.otp))
}

type sendOTPCommand struct {
	app *App
	id  string
}

func (*sendOTPCommand) Name() string     { return "send-otp" }
func (*sendOTPCommand) Synopsis() string { return "request a one-time login password" }
func (*sendOTPCommand) Usage() string    { return "send-otp -id <email-or-phone>\n" }

func (c *sendOTPCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "email address or phone number")
}

func (c *sendOTPCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		c.app.printf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	return c.app.report(c.app.Session.SendOTP(ctx, c.id))
}

type loginOTPCommand struct {
	app *App
	id  string
	otp string
}

func (*loginOTPCommand) Name() string     { return "login-otp" }
func (*loginOTPCommand) Synopsis() string { return "log in with a one-time password" }
func (*loginOTPCommand) Usage() string    { return "login-otp -id <email-or-phone> -otp <code>\n" }

func (c *loginOTPCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "email address or phone number")
	f.StringVar(&c.otp, "otp", "", "one-time password")
}

func (c *loginOTPCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" || c.otp == "" {
		c.app.printf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	return c.app.report(c.app.Session.LoginWithOTP(ctx, c.id, c.otp))
}

type whoamiCommand struct {
	app *App
}

func (*whoamiCommand) Name() string           { return "whoami" }
func (*whoamiCommand) Synopsis() string       { return "show the logged-in user" }
func (*whoamiCommand) Usage() string          { return "whoami\n" }
func (*whoamiCommand) SetFlags(*flag.FlagSet) {}

func (c *whoamiCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.app.restoreSession(ctx)
	user := c.app.Session.CurrentUser()
	if user == nil {
		c.app.printf("Not logged in.\n")
		return subcommands.ExitFailure
	}
	c.app.printf("%s %s <%s>\n", user.FirstName, user.LastName, user.Email)
	if user.Phone != "" {
		c.app.printf("phone: %s\n", user.Phone)
	}
	if user.City != "" || user.Country != "" {
		c.app.printf("location: %s %s\n", user.City, user.Country)
	}
	return subcommands.ExitSuccess
}

type forgotPasswordCommand struct {
	app *App
	id  string
}

func (*forgotPasswordCommand) Name() string     { return "forgot-password" }
func (*forgotPasswordCommand) Synopsis() string { return "request a password-recovery OTP" }
func (*forgotPasswordCommand) Usage() string    { return "forgot-password -id <email-or-phone>\n" }

func (c *forgotPasswordCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "email address or phone number")
}

func (c *forgotPasswordCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		c.app.printf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	return c.app.report(c.app.Session.SendForgotPasswordOTP(ctx, c.id))
}

type resetPasswordCommand struct {
	app      *App
	id       string
	otp      string
	password string
}

func (*resetPasswordCommand) Name() string     { return "reset-password" }
func (*resetPasswordCommand) Synopsis() string { return "set a new password using a recovery OTP" }
func (*resetPasswordCommand) Usage() string {
	return "reset-password -id <email-or-phone> -otp <code> -password <new-password>\n"
}

func (c *resetPasswordCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "email address or phone number")
	f.StringVar(&c.otp, "otp", "", "recovery one-time password")
	f.StringVar(&c.password, "password", "", "new password")
}

func (c *resetPasswordCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" || c.otp == "" || c.password == "" {
		c.app.printf("%s", c.Usage())
		return subcommands.ExitUsageError
	}
	return c.app.report(c.app.Session.ResetPassword(ctx, c.id, c.otp, c.password))
}
