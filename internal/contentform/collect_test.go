package contentform

import (
	"net/url"
	"testing"

	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect_MetaFields(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		wantErr bool
	}{
		{name: "valid movie", form: url.Values{"kind": {"movie"}, "content_id": {"5"}}},
		{name: "valid show", form: url.Values{"kind": {"show"}, "content_id": {" 7 "}}},
		{name: "unknown kind", form: url.Values{"kind": {"book"}, "content_id": {"5"}}, wantErr: true},
		{name: "missing id", form: url.Values{"kind": {"movie"}}, wantErr: true},
		{name: "non numeric id", form: url.Values{"kind": {"movie"}, "content_id": {"abc"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Collect(tt.form)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCollect_NumbersParseOrNull(t *testing.T) {
	form := url.Values{
		"kind":         {"movie"},
		"content_id":   {"5"},
		"vote_average": {"7.25"},
		"vote_count":   {"0"},
		"popularity":   {"NaN"},
		"runtime":      {"abc"},
	}

	tree, err := Collect(form)
	require.NoError(t, err)

	require.NotNil(t, tree.Movie.VoteAverage)
	assert.Equal(t, 7.25, *tree.Movie.VoteAverage)
	require.NotNil(t, tree.Movie.VoteCount)
	assert.Equal(t, int64(0), *tree.Movie.VoteCount)
	assert.Nil(t, tree.Movie.Popularity)
	assert.Nil(t, tree.Movie.Runtime)
}

func TestCollect_PostedOrderAndFallbackNumbers(t *testing.T) {
	s1, s2 := "n00000000000a", "n00000000000b"
	e1, e2 := "n00000000000c", "n00000000000d"
	form := url.Values{
		"kind":                 {"show"},
		"content_id":           {"7"},
		"season":               {s2, s1},
		s2 + ".season_number":  {""},
		s1 + ".season_number":  {"4"},
		s1 + ".episode":        {e2, e1},
		e1 + ".episode_number": {"x"},
		e2 + ".episode_number": {"10"},
		e2 + ".open":           {"true"},
	}

	tree, err := Collect(form)
	require.NoError(t, err)

	require.Len(t, tree.Seasons, 2)
	assert.Equal(t, NodeID(s2), tree.Seasons[0].ID)
	assert.Equal(t, 1, tree.Seasons[0].SeasonNumber, "blank number falls back to position")
	assert.Equal(t, 4, tree.Seasons[1].SeasonNumber)

	episodes := tree.Seasons[1].Episodes
	require.Len(t, episodes, 2)
	assert.Equal(t, 10, episodes[0].Episode.EpisodeNumber)
	assert.True(t, episodes[0].Open)
	assert.Equal(t, 2, episodes[1].Episode.EpisodeNumber, "unparsable number falls back to position")
}

func TestCollect_SkipsMalformedAndDuplicateIDs(t *testing.T) {
	q1 := "n00000000000a"
	form := url.Values{
		"kind":       {"movie"},
		"content_id": {"5"},
		"quality":    {q1, "bogus", q1, "n0000000000ZZ"},
		q1 + ".type": {"1080p"},
		"bogus.type": {"720p"},
	}

	tree, err := Collect(form)
	require.NoError(t, err)

	require.Len(t, tree.Qualities, 1)
	assert.Equal(t, "1080p", tree.Qualities[0].Variant.Type)
}

func TestCollect_IgnoresOtherKindLists(t *testing.T) {
	form := url.Values{
		"kind":       {"movie"},
		"content_id": {"5"},
		"season":     {"n00000000000a"},
	}

	tree, err := Collect(form)
	require.NoError(t, err)

	assert.Empty(t, tree.Seasons)
	assert.Nil(t, tree.Show)
	assert.Equal(t, models.KindMovie, tree.Record().Kind)
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitCSV(" a, b ,,c "))
	assert.Nil(t, splitCSV(""))
	assert.Nil(t, splitCSV(" , ,"))
	assert.Equal(t, "a, b", joinCSV([]string{"a", "b"}))
}
