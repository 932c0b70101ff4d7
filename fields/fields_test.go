package fields

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldSet_Defaults(t *testing.T) {
	tests := []struct {
		kind  Kind
		param string
		want  string
	}{
		{User, "user.fields", "id,name,username"},
		{Tweet, "tweet.fields", "id,text"},
		{Media, "media.fields", "media_key,type"},
		{Poll, "poll.fields", "id,options"},
		{Place, "place.fields", "full_name,id"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got := NewFieldSet(tt.kind, false).Render()
			assert.Equal(t, Params{tt.param: tt.want}, got)
		})
	}
}

func TestNewFieldSet_Everything(t *testing.T) {
	for _, k := range []Kind{User, Tweet, Media, Poll, Place} {
		s := NewFieldSet(k, true)
		assert.Equal(t, k.Allowed(), s.Fields(), k.String())
		assert.Equal(t, strings.Join(k.Allowed(), ","), s.Render()[k.ParameterName()])
	}
}

func TestFieldSet_AssignFiltersUnknown(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := NewFieldSet(User, false).WithLogger(logger)
	dropped := s.Assign("created_at", "bogus", "id", "bogus")

	assert.Equal(t, []string{"bogus"}, dropped)
	assert.Equal(t, []string{"id", "created_at"}, s.Fields())
	assert.Equal(t, 1, strings.Count(buf.String(), "bogus"))
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestFieldSet_AssignEmpty(t *testing.T) {
	s := NewFieldSet(Tweet, true)
	dropped := s.Assign()
	assert.Empty(t, dropped)
	assert.Equal(t, Params{"tweet.fields": ""}, s.Render())
}

func TestFieldSet_RenderNeverLeaksUnknown(t *testing.T) {
	s := NewFieldSet(Media, false)
	s.Assign("width", "non_public_metrics", "height")
	for _, f := range strings.Split(s.Render()["media.fields"], ",") {
		assert.Contains(t, Media.Allowed(), f)
	}
}

func TestExpansionSet(t *testing.T) {
	s := NewExpansionSet(TweetContext)
	assert.Len(t, s.Expansions(), 8)

	dropped := s.Assign("author_id", "pinned_tweet_id")
	assert.Equal(t, []string{"pinned_tweet_id"}, dropped)
	assert.Equal(t, Params{"expansions": "author_id"}, s.Render())

	u := NewExpansionSet(UserContext)
	assert.Equal(t, Params{"expansions": "pinned_tweet_id"}, u.Render())
}

func TestMerge(t *testing.T) {
	t.Run("different kinds keep their renderings", func(t *testing.T) {
		tw := NewFieldSet(Tweet, false)
		us := NewFieldSet(User, false)
		got := Merge(tw, us).Render()
		assert.Equal(t, Params{
			"tweet.fields": "id,text",
			"user.fields":  "id,name,username",
		}, got)
	})

	t.Run("same parameter name: last write wins", func(t *testing.T) {
		first := NewFieldSet(Tweet, true)
		second := NewFieldSet(Tweet, false)
		got := Merge(first, second)
		assert.Equal(t, "id,text", got["tweet.fields"])

		got = Merge(second, first)
		assert.Equal(t, strings.Join(Tweet.Allowed(), ","), got["tweet.fields"])
	})

	t.Run("nested merges and nil", func(t *testing.T) {
		inner := Merge(NewFieldSet(Poll, false), nil)
		got := Merge(inner, NewExpansionSet(UserContext))
		require.Len(t, got, 2)
		assert.Equal(t, "id,options", got["poll.fields"])
	})

	t.Run("typed nil sets render nothing", func(t *testing.T) {
		var fs *FieldSet
		var es *ExpansionSet
		got := Merge(fs, es, NewFieldSet(User, false))
		assert.Equal(t, Combined{"user.fields": "id,name,username"}, got)
	})
}

func TestRequires(t *testing.T) {
	assert.Nil(t, Tweet.Requires(Tweet))
	assert.Nil(t, User.Requires(User))
	assert.Equal(t, []string{"pinned_tweet_id"}, Tweet.Requires(User))
	assert.Equal(t, []string{"attachments.media_keys"}, Media.Requires(Tweet))
	assert.Equal(t, []string{"attachments.poll_ids"}, Poll.Requires(Tweet))
	assert.Equal(t, []string{"geo.place_id"}, Place.Requires(User))
	assert.Contains(t, User.Requires(Tweet), "author_id")

	// every tweet-context requirement is a real expansion
	for _, k := range []Kind{User, Media, Poll, Place} {
		for _, e := range k.Requires(Tweet) {
			assert.Contains(t, TweetContext.Available(), e, k.String())
		}
	}
}

func TestCheckExpansions(t *testing.T) {
	p := Params{"tweet.fields": "id,text", "media.fields": "media_key", "expansions": "author_id"}
	miss := CheckExpansions(p, Tweet)
	require.NotNil(t, miss)
	assert.Equal(t, "media.fields", miss.Param)
	assert.Equal(t, "media.fields needs one of the expansions attachments.media_keys", miss.Error())

	p["expansions"] = "author_id,attachments.media_keys"
	assert.Nil(t, CheckExpansions(p, Tweet))

	// an empty selection requests nothing, so needs nothing
	assert.Nil(t, CheckExpansions(Params{"place.fields": ""}, Tweet))

	assert.Nil(t, CheckExpansions(Params(Merge(TweetFamily(), NewExpansionSet(TweetContext))), Tweet))
	assert.Nil(t, CheckExpansions(Params(Merge(UserFamily(), NewExpansionSet(UserContext))), User))
}

func TestFamilies(t *testing.T) {
	tf := TweetFamily()
	for _, k := range []Kind{Tweet, User, Media, Poll, Place} {
		assert.Equal(t, strings.Join(k.Allowed(), ","), tf[k.ParameterName()])
	}
	uf := UserFamily()
	assert.Len(t, uf, 2)
	assert.NotContains(t, uf, "media.fields")
}
