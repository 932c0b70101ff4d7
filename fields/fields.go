// Package fields describes which object fields and expansions a v2 API
// request asks for, and renders them into query parameters.
package fields

import (
	"log/slog"
	"slices"
	"strings"
)

// Kind identifies a field family. Each kind owns its own parameter name and
// catalog of default and optional fields.
type Kind int

// Object kinds with a fields parameter.
const (
	User Kind = iota
	Tweet
	Media
	Poll
	Place
)

// Params is a flat query payload: parameter name to comma-joined value.
type Params map[string]string

// Descriptor is anything that renders to query parameters.
type Descriptor interface {
	Render() Params
}

type catalogEntry struct {
	param    string
	defaults []string
	optional []string
}

var catalog = map[Kind]catalogEntry{
	User: {
		param:    "user.fields",
		defaults: []string{"id", "name", "username"},
		optional: []string{
			"created_at", "description", "entities", "location", "pinned_tweet_id",
			"profile_image_url", "protected", "public_metrics", "url", "verified", "withheld",
		},
	},
	Tweet: {
		param:    "tweet.fields",
		defaults: []string{"id", "text"},
		optional: []string{
			"attachments", "author_id", "context_annotations", "conversation_id",
			"created_at", "entities", "geo", "in_reply_to_user_id", "lang",
			"possibly_sensitive", "public_metrics", "referenced_tweets", "reply_settings",
			"source", "withheld",
		},
	},
	Media: {
		param:    "media.fields",
		defaults: []string{"media_key", "type"},
		optional: []string{"duration_ms", "height", "preview_image_url", "public_metrics", "width"},
	},
	Poll: {
		param:    "poll.fields",
		defaults: []string{"id", "options"},
		optional: []string{"duration_minutes", "end_datetime", "voting_status"},
	},
	Place: {
		param:    "place.fields",
		defaults: []string{"full_name", "id"},
		optional: []string{"contained_within", "country", "country_code", "geo", "name", "place_type"},
	},
}

// String returns the kind's lower-case name.
func (k Kind) String() string {
	switch k {
	case User:
		return "user"
	case Tweet:
		return "tweet"
	case Media:
		return "media"
	case Poll:
		return "poll"
	case Place:
		return "place"
	}
	return "unknown"
}

// ParameterName returns the query parameter this kind renders under, e.g. "tweet.fields".
func (k Kind) ParameterName() string {
	return catalog[k].param
}

// Defaults returns a copy of the kind's default fields.
func (k Kind) Defaults() []string {
	return slices.Clone(catalog[k].defaults)
}

// Allowed returns every field the kind accepts: defaults followed by optional fields.
func (k Kind) Allowed() []string {
	e := catalog[k]
	return append(slices.Clone(e.defaults), e.optional...)
}

// FieldSet is the effective field selection for one Kind.
type FieldSet struct {
	kind      Kind
	effective []string
	logger    *slog.Logger
}

// NewFieldSet returns the kind's defaults, or every allowed field when everything is set.
func NewFieldSet(kind Kind, everything bool) *FieldSet {
	s := &FieldSet{kind: kind, effective: kind.Defaults()}
	if everything {
		s.effective = kind.Allowed()
	}
	return s
}

// WithLogger sets the logger used to report dropped field names.
func (s *FieldSet) WithLogger(l *slog.Logger) *FieldSet {
	s.logger = l
	return s
}

// Kind returns the field family.
func (s *FieldSet) Kind() Kind { return s.kind }

// ParameterName returns the rendered parameter name.
func (s *FieldSet) ParameterName() string { return s.kind.ParameterName() }

// Fields returns a copy of the effective fields.
func (s *FieldSet) Fields() []string { return slices.Clone(s.effective) }

// Allowed returns every field the set could hold.
func (s *FieldSet) Allowed() []string { return s.kind.Allowed() }

// Assign replaces the effective fields with names filtered to the allowed
// catalog. Unknown names are dropped, reported once each through the logger,
// and returned to the caller.
func (s *FieldSet) Assign(names ...string) []string {
	kept, dropped := filterAllowed(s.kind.Allowed(), names)
	s.effective = kept
	logDropped(s.logger, "field", s.kind.String(), dropped)
	return dropped
}

// Render returns {parameter name: comma-joined effective fields}. An empty
// selection still renders the key with an empty value. A nil set renders
// nothing.
func (s *FieldSet) Render() Params {
	if s == nil {
		return nil
	}
	return Params{s.ParameterName(): strings.Join(s.effective, ",")}
}

// filterAllowed keeps names present in allowed, in catalog order and without
// duplicates. dropped lists unknown names once each, in input order.
func filterAllowed(allowed, names []string) (kept, dropped []string) {
	want := make(map[string]bool, len(names))
	seenDrop := make(map[string]bool)
	for _, n := range names {
		if slices.Contains(allowed, n) {
			want[n] = true
			continue
		}
		if !seenDrop[n] {
			seenDrop[n] = true
			dropped = append(dropped, n)
		}
	}
	kept = []string{}
	for _, a := range allowed {
		if want[a] {
			kept = append(kept, a)
		}
	}
	return kept, dropped
}

func logDropped(l *slog.Logger, what, kind string, dropped []string) {
	if l == nil {
		l = slog.Default()
	}
	for _, d := range dropped {
		l.Warn("dropping unknown "+what,
			slog.String("kind", kind),
			slog.String(what, d))
	}
}
