package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/chancenmarket/chancen/internal/client"
	"github.com/chancenmarket/chancen/internal/config"
	"github.com/chancenmarket/chancen/internal/logging"
	"github.com/chancenmarket/chancen/internal/market"
	"github.com/chancenmarket/chancen/internal/session"
	"github.com/chancenmarket/chancen/internal/storage"
)

// app is what every command runs against.
type app struct {
	cfg        *config.Client
	api        *client.Client
	sess       *session.Session
	categories *market.Categories
	in         io.Reader
	out        io.Writer
}

type command struct {
	run   func(ctx context.Context, a *app, args []string) error
	usage string
	auth  bool
}

var commands map[string]command

// Set in init because the commands print their own usage lines.
func init() {
	commands = map[string]command{
		"register":      {run: cmdRegister, usage: "register <name> <email>"},
		"login":         {run: cmdLogin, usage: "login <email>"},
		"logout":        {run: cmdLogout, usage: "logout"},
		"whoami":        {run: cmdWhoami, usage: "whoami", auth: true},
		"profile":       {run: cmdProfile, usage: "profile [-name <name>] [-image <path>] [-phone=true|false]", auth: true},
		"categories":    {run: cmdCategories, usage: "categories"},
		"listings":      {run: cmdListings, usage: "listings [-c <category>] [-q <search>] [-n <limit>]"},
		"listing":       {run: cmdListing, usage: "listing <id>"},
		"create":        {run: cmdCreate, usage: "create -title <t> -desc <d> -price <p> -c <category> -image <path>...", auth: true},
		"my-listings":   {run: cmdMyListings, usage: "my-listings [-rm <id>]", auth: true},
		"favorite":      {run: cmdFavorite, usage: "favorite <listing-id>", auth: true},
		"favorites":     {run: cmdFavorites, usage: "favorites [-rm <listing-id>]", auth: true},
		"offer":         {run: cmdOffer, usage: "offer <listing-id> <price> [message]", auth: true},
		"offers":        {run: cmdOffers, usage: "offers [-accept <id>] [-reject <id>]", auth: true},
		"conversations": {run: cmdConversations, usage: "conversations", auth: true},
		"unread":        {run: cmdUnread, usage: "unread", auth: true},
		"contact":       {run: cmdContact, usage: "contact <listing-id>", auth: true},
		"chat":          {run: cmdChat, usage: "chat <listing-id> <other-user-id>", auth: true},
		"support":       {run: cmdSupport, usage: "support <subject> <message>", auth: true},
		"ai-describe":   {run: cmdDescribe, usage: "ai-describe -title <t> -c <category> [-f key=value]..."},
		"ai-price":      {run: cmdPrice, usage: "ai-price -title <t> -c <category> [-condition <c>]"},
	}
}

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg := config.NewClient()
	fs := flag.NewFlagSet("chancen", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	fs.Usage = func() { printUsage(os.Stdout) }

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", name)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelInfo
	}
	closeLog, err := logging.Setup(cfg.LogPath, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, name, cmd, fs.Args()[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", describeError(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Client, name string, cmd command, args []string, in io.Reader, out io.Writer) error {
	store, err := storage.Open(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer store.Close()

	api := client.New(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout})
	sess := session.New(api, store)
	if err := sess.Load(ctx); err != nil {
		return err
	}
	slog.Info("session loaded", "signed_in", sess.LoggedIn(), "api", cfg.APIURL)

	if cmd.auth && !sess.LoggedIn() {
		return fmt.Errorf("%s: not signed in, run 'chancen login <email>' first", name)
	}

	a := &app{
		cfg:        cfg,
		api:        api,
		sess:       sess,
		categories: market.NewCategories(api),
		in:         in,
		out:        out,
	}
	err = cmd.run(ctx, a, args)
	if cmd.auth && client.IsUnauthorized(err) {
		// The token was revoked or the secret rotated.
		if lerr := sess.Logout(ctx); lerr != nil {
			slog.Warn("clearing rejected session failed", "error", lerr)
		}
	}
	return err
}

// describeError prefers the backend's detail message.
func describeError(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return err.Error()
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: chancen [flags] <command> [args]

Flags:
  -a, -api <url>          backend base URL (default: `+config.DefaultAPIURL+`)
  -s, -storage <path>     device storage file (default: user config dir)
  -p, -poll <duration>    chat refresh interval (default: 3s)
  -t, -timeout <duration> HTTP request timeout (default: 30s)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -v, -verbose            log INFO messages
  -h, -help               show this help and exit

Commands:
`)
	for _, name := range sortedCommands() {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprint(w, `
Environment: CHANCEN_API_URL, CHANCEN_STORAGE, CHANCEN_POLL_INTERVAL,
CHANCEN_HTTP_TIMEOUT, CHANCEN_LOG, CHANCEN_VERBOSE.
A .env file in the working directory is read if present.
`)
}
