package fields

import "maps"

// Combined is the result of merging several descriptors. It is itself a
// Descriptor, so merges nest.
type Combined Params

// Render returns a copy of the merged parameters.
func (c Combined) Render() Params {
	return Params(maps.Clone(c))
}

// Merge unions the rendered parameters of ds in argument order. When two
// descriptors render the same parameter name the later one wins. nil
// descriptors are skipped.
func Merge(ds ...Descriptor) Combined {
	out := Combined{}
	for _, d := range ds {
		if d == nil {
			continue
		}
		maps.Copy(out, d.Render())
	}
	return out
}

// TweetFamily returns everything for every object a tweet can reference:
// tweet, user, media, poll and place fields.
func TweetFamily() Combined {
	return Merge(
		NewFieldSet(Tweet, true),
		NewFieldSet(User, true),
		NewFieldSet(Media, true),
		NewFieldSet(Poll, true),
		NewFieldSet(Place, true),
	)
}

// UserFamily returns every tweet and user field.
func UserFamily() Combined {
	return Merge(
		NewFieldSet(Tweet, true),
		NewFieldSet(User, true),
	)
}
