package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-auth-session-client/apiclient"
	"github.com/jrsteele09/go-auth-session-client/auth"
	"github.com/jrsteele09/go-auth-session-client/internal/app"
	"github.com/jrsteele09/go-auth-session-client/internal/config"
	internalerrors "github.com/jrsteele09/go-auth-session-client/internal/errors"
	"github.com/jrsteele09/go-auth-session-client/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: authclient <command> [flags]

commands:
  login          -user NAME [-password PASS] [-remember] [-initial-url URL]
  session        show the current session
  switch-tenant  -id TENANT_ID | -host
  logout         log the current user out
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		var remote *apiclient.RemoteError
		switch {
		case internalerrors.As(err, &remote) && remote.UnauthorizedRequest:
			fmt.Fprintln(os.Stderr, "The server rejected the request as unauthorized; run `authclient login` first")
		case internalerrors.Is(err, internalerrors.ErrNoAccessToken):
			fmt.Fprintln(os.Stderr, "The server did not issue an access token")
		}
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()

	c := config.New()
	setupLogging(c.GetLogLevel())

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("no command given")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, flags := args[0], args[1:]
	switch command {
	case "login":
		return login(ctx, c, flags)
	case "session":
		return showSession(ctx, c)
	case "switch-tenant":
		return switchTenant(ctx, c, flags)
	case "logout":
		return logout(ctx, c)
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", command)
}

func login(ctx context.Context, c config.Config, args []string) (returnError error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	user := fs.String("user", "", "user name or email address")
	password := fs.String("password", config.GetEnv("AUTH_PASSWORD", ""), "password (defaults to $AUTH_PASSWORD)")
	remember := fs.Bool("remember", false, "keep the token beyond this session")
	initialURL := fs.String("initial-url", "", "page to return to after login")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return errors.New("login: -user is required")
	}

	displayAppname(c.GetAppName())

	a, err := app.New(c, app.WithInitialURL(*initialURL))
	if err != nil {
		return err
	}
	defer closeApp(a, &returnError)

	info, err := a.Login(ctx, auth.Credentials{
		UserNameOrEmailAddress: *user,
		Password:               *password,
		RememberClient:         *remember,
	})
	if err != nil {
		return err
	}
	printSession(a, info)
	fmt.Printf("Redirect: %s\n", a.Navigator.Location())
	return nil
}

func showSession(ctx context.Context, c config.Config) (returnError error) {
	a, err := app.New(c)
	if err != nil {
		return err
	}
	defer closeApp(a, &returnError)

	ok, err := a.Session.Init(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Session was invalidated and has been logged out")
		return nil
	}
	printSession(a, a.Session.Info())
	return nil
}

func switchTenant(ctx context.Context, c config.Config, args []string) (returnError error) {
	fs := flag.NewFlagSet("switch-tenant", flag.ContinueOnError)
	id := fs.String("id", "", "tenant id to switch to")
	host := fs.Bool("host", false, "switch to the host (no tenant)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var tenantID *int64
	switch {
	case *host && *id != "":
		return errors.New("switch-tenant: use either -id or -host")
	case *host:
	case *id != "":
		parsed, err := strconv.ParseInt(*id, 10, 64)
		if err != nil {
			return internalerrors.Wrapf(err, "switch-tenant: invalid -id %q", *id)
		}
		tenantID = &parsed
	default:
		return errors.New("switch-tenant: -id or -host is required")
	}

	a, err := app.New(c)
	if err != nil {
		return err
	}
	defer closeApp(a, &returnError)

	if _, err := a.Session.Init(ctx); err != nil {
		return err
	}
	if !a.Session.ChangeTenantIfNeeded(tenantID) {
		fmt.Println("Tenant unchanged")
		return nil
	}
	fmt.Println("Tenant switched")
	return nil
}

func logout(ctx context.Context, c config.Config) (returnError error) {
	a, err := app.New(c)
	if err != nil {
		return err
	}
	defer closeApp(a, &returnError)

	a.Logout(ctx)
	fmt.Println("Logged out")
	return nil
}

func printSession(a *app.App, info session.Info) {
	if info.Application != nil {
		fmt.Printf("Application: %s\n", info.Application.Version)
	}
	if info.User == nil {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("User:        %s (%s)\n", a.Session.ShownLoginName(), info.User.FullName())
	if info.Tenant != nil {
		fmt.Printf("Tenant:      %s [%d]\n", info.Tenant.Name, info.Tenant.ID)
	}
}

func closeApp(a *app.App, returnError *error) {
	if err := a.Close(); err != nil && *returnError == nil {
		*returnError = err
	}
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
