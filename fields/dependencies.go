package fields

import (
	"slices"
	"strings"
)

// userExpansions are the tweet-context expansions that bring users into
// includes.
var userExpansions = []string{
	"author_id",
	"entities.mentions.username",
	"in_reply_to_user_id",
	"referenced_tweets.id.author_id",
}

// Requires returns the expansions, any one of which is needed for k's
// objects to appear in a response whose primary objects are of kind primary.
// It returns nil when k is the primary kind.
func (k Kind) Requires(primary Kind) []string {
	if k == primary {
		return nil
	}
	switch k {
	case User:
		return slices.Clone(userExpansions)
	case Tweet:
		return []string{"pinned_tweet_id"}
	case Media:
		return []string{"attachments.media_keys"}
	case Poll:
		return []string{"attachments.poll_ids"}
	case Place:
		return []string{"geo.place_id"}
	}
	return nil
}

// MissingExpansion reports a field parameter that no requested expansion
// can satisfy.
type MissingExpansion struct {
	Param string
	AnyOf []string
}

func (m *MissingExpansion) Error() string {
	return m.Param + " needs one of the expansions " + strings.Join(m.AnyOf, ", ")
}

// CheckExpansions verifies that every non-empty field parameter in p, other
// than the primary kind's, is backed by an expansion that yields its
// objects. Kinds are checked in declaration order and the first miss is
// returned.
func CheckExpansions(p Params, primary Kind) *MissingExpansion {
	requested := strings.Split(p[ExpansionParam], ",")
	for _, k := range []Kind{User, Tweet, Media, Poll, Place} {
		if p[k.ParameterName()] == "" {
			continue
		}
		need := k.Requires(primary)
		if len(need) == 0 {
			continue
		}
		if !slices.ContainsFunc(need, func(e string) bool { return slices.Contains(requested, e) }) {
			return &MissingExpansion{Param: k.ParameterName(), AnyOf: need}
		}
	}
	return nil
}
