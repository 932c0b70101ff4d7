package osometweet

import (
	"maps"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/osome-iu/osometweet/fields"
)

// MaxBatch is the most identifiers one lookup request accepts.
const MaxBatch = 100

// Query length limits for the two search endpoints.
const (
	MaxRecentQuery = 512
	MaxAllQuery    = 1024
)

// Family picks which objects "everything" expands to.
type Family int

const (
	// FamilyNone leaves "everything" without effect.
	FamilyNone Family = iota
	// FamilyTweet: tweet, user, media, poll and place fields with tweet expansions.
	FamilyTweet
	// FamilyUser: tweet and user fields with the pinned tweet expansion.
	FamilyUser
)

// RequestOptions are the optional parts of a request payload.
type RequestOptions struct {
	// Everything requests every field and expansion of the endpoint's family.
	// Fields and Expansions are ignored when set.
	Everything bool
	Fields     fields.Descriptor
	Expansions fields.Descriptor
	// Params are extra query parameters such as max_results,
	// pagination_token, start_time or exclude. They are applied last.
	Params map[string]string
}

// BuildPayload assembles the query parameters for a request: base first,
// then descriptors, then opts.Params. Descriptors never replace a base
// parameter. Without Everything, a field parameter whose objects no
// requested expansion brings in is a ConfigError.
func BuildPayload(base fields.Params, family Family, opts RequestOptions) (fields.Params, error) {
	out := fields.Params{}
	maps.Copy(out, base)

	var desc fields.Params
	if opts.Everything {
		desc = everything(family)
	} else {
		desc = fields.Params(fields.Merge(opts.Fields, opts.Expansions))
	}
	for k, v := range desc {
		if _, ok := base[k]; !ok {
			out[k] = v
		}
	}
	maps.Copy(out, opts.Params)
	if !opts.Everything {
		if err := checkExpansions(out, family); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// primaryKind is the object type an endpoint family returns under data.
func (f Family) primaryKind() (fields.Kind, bool) {
	switch f {
	case FamilyTweet:
		return fields.Tweet, true
	case FamilyUser:
		return fields.User, true
	}
	return 0, false
}

func checkExpansions(p fields.Params, family Family) error {
	primary, ok := family.primaryKind()
	if !ok {
		return nil
	}
	if m := fields.CheckExpansions(p, primary); m != nil {
		return &ConfigError{Field: m.Param, Message: "needs one of the expansions " + strings.Join(m.AnyOf, ", ")}
	}
	return nil
}

func everything(family Family) fields.Params {
	switch family {
	case FamilyTweet:
		return fields.Params(fields.Merge(fields.TweetFamily(), fields.NewExpansionSet(fields.TweetContext)))
	case FamilyUser:
		return fields.Params(fields.Merge(fields.UserFamily(), fields.NewExpansionSet(fields.UserContext)))
	}
	return nil
}

var (
	numericID = regexp.MustCompile(`^[0-9]{1,19}$`)
	handle    = regexp.MustCompile(`^[A-Za-z0-9_]{1,50}$`)
)

// CheckBatch rejects empty or oversized identifier lists.
func CheckBatch(field string, n int) error {
	if n == 0 {
		return invalid(field, "must not be empty")
	}
	if n > MaxBatch {
		return invalid(field, "at most %d per request, got %d", MaxBatch, n)
	}
	return nil
}

// NormalizeUsername strips one leading "@".
func NormalizeUsername(s string) string {
	return strings.TrimPrefix(s, "@")
}

// joinIDs validates a batch of numeric ids and comma-joins it.
func joinIDs(field string, ids []string) (string, error) {
	if err := CheckBatch(field, len(ids)); err != nil {
		return "", err
	}
	for _, id := range ids {
		if !numericID.MatchString(id) {
			return "", invalid(field, "%q is not a numeric id", id)
		}
	}
	return strings.Join(ids, ","), nil
}

// joinUsernames strips "@" from each name, validates and comma-joins.
func joinUsernames(names []string) (string, error) {
	if err := CheckBatch("usernames", len(names)); err != nil {
		return "", err
	}
	clean := make([]string, len(names))
	for i, n := range names {
		clean[i] = NormalizeUsername(n)
		if !handle.MatchString(clean[i]) {
			return "", invalid("usernames", "%q is not a valid username", n)
		}
	}
	return strings.Join(clean, ","), nil
}

func checkUserID(id string) error {
	if !numericID.MatchString(id) {
		return invalid("user_id", "%q is not a numeric id", id)
	}
	return nil
}

func checkQuery(query string, limit int) error {
	if strings.TrimSpace(query) == "" {
		return invalid("query", "must not be empty")
	}
	if n := utf8.RuneCountInString(query); n > limit {
		return invalid("query", "%d characters exceeds the %d character limit", n, limit)
	}
	return nil
}
