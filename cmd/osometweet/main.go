package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/osome-iu/osometweet"
	"github.com/osome-iu/osometweet/metrics"
)

type globalFlags struct {
	flagset     *flag.FlagSet
	envFile     string
	auth        string
	out         string
	everything  bool
	flatten     bool
	maxPages    int
	maxResults  int
	limit       int
	fullArchive bool
	dryRun      bool
	start       string
	end         string
	metricsAddr string
	verbose     bool
}

func newGlobalFlags() *globalFlags {
	f := &globalFlags{
		flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.flagset.StringVar(&f.envFile, "env", "", "path to a .env file with TWITTER_* credentials")
	f.flagset.StringVar(&f.auth, "auth", "app", "authentication: app (bearer token) or user (OAuth 1.0a)")
	f.flagset.StringVar(&f.out, "out", "-", "output file for JSON lines, - for stdout")
	f.flagset.BoolVar(&f.everything, "everything", false, "request every field and expansion")
	f.flagset.BoolVar(&f.flatten, "flatten", false, "flatten nested objects into dotted keys")
	f.flagset.IntVar(&f.maxPages, "max-pages", 0, "stop paging after this many pages (0 = all)")
	f.flagset.IntVar(&f.maxResults, "max-results", 0, "max_results per page")
	f.flagset.IntVar(&f.limit, "limit", 0, "stop a stream after this many objects (0 = until interrupted)")
	f.flagset.BoolVar(&f.fullArchive, "all", false, "search the full archive instead of the last 7 days")
	f.flagset.BoolVar(&f.dryRun, "dry-run", false, "validate stream rule changes without applying them")
	f.flagset.StringVar(&f.start, "start", "", "start_time as YYYY-MM-DD")
	f.flagset.StringVar(&f.end, "end", "", "end_time as YYYY-MM-DD")
	f.flagset.StringVar(&f.metricsAddr, "metrics", "", "serve Prometheus metrics on this address, e.g. :9090")
	f.flagset.BoolVar(&f.verbose, "v", false, "debug logging")
	return f
}

const usage = `usage: osometweet [flags] <command> [args]

commands:
  tweets <id>...           look up tweets by id
  users <id>...            look up users by id
  usernames <name>...      look up users by username
  followers <user id>      list a user's followers
  following <user id>      list accounts a user follows
  timeline <user id>       list a user's tweets
  mentions <user id>       list tweets mentioning a user
  search <query>           search tweets (-all for the full archive)
  sample                   consume the sampled stream
  filter                   consume the filtered stream
  rules list [id...]       list filtered-stream rules
  rules add <file.yaml>    add rules from a YAML file
  rules delete <id>...     delete rules by id

Passing - as the only id or username reads them from stdin, one per line.
`

func main() {
	f := newGlobalFlags()
	f.flagset.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		f.flagset.PrintDefaults()
	}
	if err := f.flagset.Parse(os.Args[1:]); err != nil {
		fmt.Printf("failed to parse command args: %s\n", err)
		os.Exit(1)
	}
	if f.flagset.NArg() == 0 {
		f.flagset.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f, logger); err != nil {
		logger.Error("command failed", "command", f.flagset.Arg(0), "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, f *globalFlags, logger *slog.Logger) error {
	cfg, err := loadConfig(f.envFile)
	if err != nil {
		return err
	}

	command := f.flagset.Arg(0)
	session := osometweet.SessionConfig{
		Logger:            logger,
		Unmanaged:         isStreamCommand(command),
		RequestsPerMinute: cfg.RequestsPerMinute,
	}
	if f.metricsAddr != "" {
		collector := metrics.New("")
		session.MetricsHook = collector.Hook
		session.WaitHook = collector.WaitHook
		serveMetrics(f.metricsAddr, collector, logger)
	}

	auth, err := cfg.authenticator(f.auth, session)
	if err != nil {
		return err
	}
	client, err := osometweet.NewClient(auth, osometweet.ClientConfig{BaseURL: cfg.BaseURL, Logger: logger})
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(f.out)
	if err != nil {
		return err
	}
	defer closeOut()

	r := &runner{
		client: client,
		flags:  f,
		logger: logger,
		w:      newLineWriter(out, f.flatten),
		stdin:  os.Stdin,
	}
	return r.dispatch(ctx, command, f.flagset.Args()[1:])
}

func serveMetrics(addr string, c *metrics.Collector, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	fh, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return fh, func() { fh.Close() }, nil
}
