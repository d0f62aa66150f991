// Command sessionless signs and verifies sessionless messages and calls
// the BDO, Dolores and Sanora services.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/allyabase/sessionless-go"
	sessionlesshttp "github.com/allyabase/sessionless-go/http"
	"github.com/allyabase/sessionless-go/internal/config"
	"github.com/allyabase/sessionless-go/internal/metrics"
	"github.com/allyabase/sessionless-go/keystore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

const (
	usageBDO     = "bdo create|get|update|public|bases|spellbooks|teleport|delete [flags]"
	usageDolores = "dolores create|get|video|feed|tag|delete [flags]"
	usageSanora  = "sanora create|get|product|products|artifact|image|order|orders|delete [flags]"
)

var commands = map[string]command{
	"keygen":  {usage: "keygen [-force]", run: cmdKeygen},
	"pubkey":  {usage: "pubkey", run: cmdPubKey},
	"keys":    {usage: "keys", run: cmdKeys},
	"sign":    {usage: "sign <message>", run: cmdSign},
	"verify":  {usage: "verify -pubkey <hex> -signature <hex> <message>", run: cmdVerify},
	"bdo":     {usage: usageBDO, run: cmdBDO},
	"dolores": {usage: usageDolores, run: cmdDolores},
	"sanora":  {usage: usageSanora, run: cmdSanora},
	"smoke":   {usage: "smoke [-local] [-parallel]", run: cmdSmoke},
}

type app struct {
	cfg    config.Config
	logger zerolog.Logger
	stdout io.Writer
	stderr io.Writer

	store     keystore.Store
	closers   []io.Closer
	registry  *prometheus.Registry
	transport http.RoundTripper
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sessionless", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file")
	baseURL := fs.String("base-url", "", "root URL the services are routed under")
	keystorePath := fs.String("keystore", "", "directory of the key database")
	keyName := fs.String("key", "", "name of the key to use")
	logLevel := fs.String("log-level", "", "log level")
	logFile := fs.String("log-file", "", "also write JSON logs to this file")
	withMetrics := fs.Bool("metrics", false, "print request metrics on exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: sessionless [flags] <command> [args]\n\ncommands:\n")
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(stderr, "  %s\n", commands[name].usage)
		}
		fmt.Fprintf(stderr, "\nflags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "base-url":
			cfg.BaseURL = *baseURL
		case "keystore":
			cfg.Keystore.Path = *keystorePath
		case "key":
			cfg.Keystore.Name = *keyName
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-file":
			cfg.Log.File = *logFile
		case "metrics":
			cfg.Metrics = *withMetrics
		}
	})

	a, err := newApp(cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer a.close()

	err = cmd.run(ctx, a, fs.Args()[1:])
	if a.registry != nil {
		if derr := metrics.Dump(stderr, a.registry); derr != nil {
			a.logger.Warn().Err(derr).Msg("failed to dump metrics")
		}
	}
	if err != nil {
		a.logger.Error().Err(err).Str("command", fs.Arg(0)).Msg("command failed")
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		return 1
	}
	return 0
}

func newApp(cfg config.Config, stdout, stderr io.Writer) (*app, error) {
	a := &app{
		cfg:       cfg,
		stdout:    stdout,
		stderr:    stderr,
		transport: http.DefaultTransport,
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	var w io.Writer = zerolog.ConsoleWriter{Out: stderr}
	if cfg.Log.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		}
		a.closers = append(a.closers, rotated)
		w = zerolog.MultiLevelWriter(w, rotated)
	}
	a.logger = zerolog.New(w).With().Timestamp().Logger().Level(level)

	if cfg.Metrics {
		a.registry = prometheus.NewRegistry()
		a.transport, err = metrics.InstrumentTransport(a.transport, a.registry)
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close")
		}
	}
}

// keyStore opens the configured key database on first use.
func (a *app) keyStore() (keystore.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	path := a.cfg.Keystore.Path
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("no keystore path configured: %w", err)
		}
		path = filepath.Join(dir, "sessionless", "keys")
	}
	db, err := keystore.OpenLevelDB(path)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db)
	a.store = db
	return db, nil
}

func (a *app) key() (*sessionless.KeyPair, error) {
	store, err := a.keyStore()
	if err != nil {
		return nil, err
	}
	return keystore.LoadOrGenerate(store, a.cfg.Keystore.Name)
}

// clientOptions configures a service client that signs with key.
func (a *app) clientOptions(key *sessionless.KeyPair) []sessionlesshttp.ClientOption {
	return []sessionlesshttp.ClientOption{
		sessionlesshttp.WithKeyPair(key),
		sessionlesshttp.WithLogger(a.logger),
		sessionlesshttp.WithHTTPClient(&http.Client{
			Transport: a.transport,
			Timeout:   a.cfg.Timeout,
		}),
	}
}

func (a *app) serviceURL(name string) (string, error) {
	return a.cfg.ServiceURL(name)
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
