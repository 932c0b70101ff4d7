package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/osome-iu/osometweet"
	"github.com/osome-iu/osometweet/wrangle"
)

type runner struct {
	client *osometweet.Client
	flags  *globalFlags
	logger *slog.Logger
	w      *lineWriter
	stdin  io.Reader
}

type batchFunc func(context.Context, []string, osometweet.RequestOptions) (*osometweet.Envelope, error)

type pagesFunc func(string, osometweet.RequestOptions) *osometweet.PageIterator

type streamFunc func(context.Context, osometweet.RequestOptions) (*osometweet.Stream, error)

func isStreamCommand(command string) bool {
	return command == "sample" || command == "filter"
}

func (r *runner) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "tweets":
		return r.lookup(ctx, args, r.client.TweetLookup)
	case "users":
		return r.lookup(ctx, args, r.client.UserLookupIDs)
	case "usernames":
		return r.lookup(ctx, args, r.client.UserLookupUsernames)
	case "followers":
		return r.userPages(ctx, args, r.client.FollowersPages)
	case "following":
		return r.userPages(ctx, args, r.client.FollowingPages)
	case "timeline":
		return r.userPages(ctx, args, r.client.TweetTimelinePages)
	case "mentions":
		return r.userPages(ctx, args, r.client.MentionsTimelinePages)
	case "search":
		if len(args) == 0 {
			return fmt.Errorf("search: missing query")
		}
		opts, err := r.options(true)
		if err != nil {
			return err
		}
		return r.pages(ctx, r.client.SearchPages(strings.Join(args, " "), r.flags.fullArchive, opts))
	case "sample":
		return r.stream(ctx, r.client.SampledStream)
	case "filter":
		return r.stream(ctx, r.client.FilteredStream)
	case "rules":
		return r.rules(ctx, args)
	}
	return fmt.Errorf("unknown command %q", command)
}

// options builds the request options from the global flags. Paged
// endpoints also take max_results and the time window.
func (r *runner) options(paged bool) (osometweet.RequestOptions, error) {
	opts := osometweet.RequestOptions{Everything: r.flags.everything}
	if !paged {
		return opts, nil
	}
	params := map[string]string{}
	if r.flags.maxResults > 0 {
		params["max_results"] = strconv.Itoa(r.flags.maxResults)
	}
	for name, value := range map[string]string{"start_time": r.flags.start, "end_time": r.flags.end} {
		if value == "" {
			continue
		}
		iso, err := wrangle.ISODate(value, "")
		if err != nil {
			return opts, fmt.Errorf("%s: %w", name, err)
		}
		params[name] = iso
	}
	if len(params) > 0 {
		opts.Params = params
	}
	return opts, nil
}

// lookup splits the identifiers into batches the endpoint accepts.
func (r *runner) lookup(ctx context.Context, args []string, fetch batchFunc) error {
	values, err := r.values(args)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("expected at least one id or username")
	}
	opts, err := r.options(false)
	if err != nil {
		return err
	}
	for i, batch := range wrangle.Chunk(values, osometweet.MaxBatch) {
		env, err := fetch(ctx, batch, opts)
		if err != nil {
			return fmt.Errorf("batch %d: %w", i+1, err)
		}
		for _, e := range env.Errors {
			r.logger.Warn("partial error", "value", e.Value, "title", e.Title, "detail", e.Detail)
		}
		if err := r.w.WriteEnvelope(env); err != nil {
			return err
		}
	}
	r.logger.Info("lookup finished", "requested", len(values), "written", r.w.Count())
	return nil
}

func (r *runner) userPages(ctx context.Context, args []string, open pagesFunc) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one user id, got %d", len(args))
	}
	opts, err := r.options(true)
	if err != nil {
		return err
	}
	return r.pages(ctx, open(args[0], opts))
}

func (r *runner) pages(ctx context.Context, it *osometweet.PageIterator) error {
	for it.HasNext() {
		if r.flags.maxPages > 0 && it.Pages() >= r.flags.maxPages {
			break
		}
		env, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if err := r.w.WriteEnvelope(env); err != nil {
			return err
		}
	}
	r.logger.Info("paging finished", "pages", it.Pages(), "written", r.w.Count(), "more", it.HasNext())
	return nil
}

func (r *runner) stream(ctx context.Context, open streamFunc) error {
	opts, err := r.options(false)
	if err != nil {
		return err
	}
	s, err := open(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	for s.Next() {
		if err := r.w.WriteItem(s.Data()); err != nil {
			return err
		}
		if r.flags.limit > 0 && r.w.Count() >= r.flags.limit {
			break
		}
	}
	if err := s.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	r.logger.Info("stream finished", "written", r.w.Count())
	return nil
}

func (r *runner) rules(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("rules: expected list, add or delete")
	}
	var (
		env *osometweet.Envelope
		err error
	)
	switch args[0] {
	case "list":
		env, err = r.client.GetStreamRules(ctx, args[1:]...)
	case "add":
		if len(args) != 2 {
			return fmt.Errorf("rules add: expected one YAML file")
		}
		var rules []osometweet.StreamRule
		if rules, err = loadRules(args[1]); err != nil {
			return err
		}
		env, err = r.client.AddStreamRules(ctx, rules, r.flags.dryRun)
	case "delete":
		env, err = r.client.DeleteStreamRules(ctx, args[1:], r.flags.dryRun)
	default:
		return fmt.Errorf("rules: unknown action %q", args[0])
	}
	if err != nil {
		return err
	}
	for _, e := range env.Errors {
		r.logger.Warn("rule rejected", "value", e.Value, "title", e.Title, "detail", e.Detail)
	}
	if len(env.Meta.Summary) > 0 {
		r.logger.Info("rules updated", "summary", string(env.Meta.Summary), "dry_run", r.flags.dryRun)
	}
	return r.w.WriteEnvelope(env)
}

// values returns args, or the non-empty stdin lines when args is just "-".
// Lines starting with # are skipped.
func (r *runner) values(args []string) ([]string, error) {
	if len(args) != 1 || args[0] != "-" {
		return args, nil
	}
	var out []string
	sc := bufio.NewScanner(r.stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return out, nil
}

type rulesFile struct {
	Rules []osometweet.StreamRule `yaml:"rules"`
}

// loadRules reads filtered-stream rules from a YAML document:
//
//	rules:
//	  - value: "cat has:images"
//	    tag: cat pictures
func loadRules(path string) ([]osometweet.StreamRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("parse rules %s: no rules found", path)
	}
	return f.Rules, nil
}
