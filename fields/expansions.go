package fields

import (
	"log/slog"
	"slices"
	"strings"
)

// ExpansionParam is the query parameter expansions render under.
const ExpansionParam = "expansions"

// Context selects which object an expansion set hangs off.
type Context int

// Expansion contexts.
const (
	TweetContext Context = iota
	UserContext
)

var expansionCatalog = map[Context][]string{
	TweetContext: {
		"attachments.poll_ids",
		"attachments.media_keys",
		"author_id",
		"entities.mentions.username",
		"geo.place_id",
		"in_reply_to_user_id",
		"referenced_tweets.id",
		"referenced_tweets.id.author_id",
	},
	UserContext: {"pinned_tweet_id"},
}

func (c Context) String() string {
	if c == UserContext {
		return "user"
	}
	return "tweet"
}

// Available returns every expansion the context accepts.
func (c Context) Available() []string {
	return slices.Clone(expansionCatalog[c])
}

// ExpansionSet is the effective expansion selection for one Context.
// A new set requests every available expansion.
type ExpansionSet struct {
	ctx       Context
	effective []string
	logger    *slog.Logger
}

// NewExpansionSet returns a set holding every expansion ctx allows.
func NewExpansionSet(ctx Context) *ExpansionSet {
	return &ExpansionSet{ctx: ctx, effective: ctx.Available()}
}

// WithLogger sets the logger used to report dropped expansions.
func (s *ExpansionSet) WithLogger(l *slog.Logger) *ExpansionSet {
	s.logger = l
	return s
}

// Context returns the object the expansions hang off.
func (s *ExpansionSet) Context() Context { return s.ctx }

// Expansions returns a copy of the effective expansions.
func (s *ExpansionSet) Expansions() []string { return slices.Clone(s.effective) }

// ParameterName is always "expansions".
func (s *ExpansionSet) ParameterName() string { return ExpansionParam }

// Available returns every expansion the set could hold.
func (s *ExpansionSet) Available() []string { return s.ctx.Available() }

// Assign replaces the effective expansions with names filtered to the
// context's catalog and returns the names that were dropped.
func (s *ExpansionSet) Assign(names ...string) []string {
	kept, dropped := filterAllowed(s.ctx.Available(), names)
	s.effective = kept
	logDropped(s.logger, "expansion", s.ctx.String(), dropped)
	return dropped
}

// Render returns {"expansions": comma-joined effective expansions}, or nil
// for a nil set.
func (s *ExpansionSet) Render() Params {
	if s == nil {
		return nil
	}
	return Params{ExpansionParam: strings.Join(s.effective, ",")}
}
