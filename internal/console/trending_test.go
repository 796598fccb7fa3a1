package console

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTrending(h *harness) {
	alpha := models.TrendingItem{ID: 1, Title: "Alpha", VoteAverage: models.Ptr(7.5), Year: "2020", MediaType: models.KindMovie}
	beta := models.TrendingItem{ID: 2, Title: "Beta", Year: "2021", MediaType: models.KindMovie}
	gamma := models.TrendingItem{ID: 10, Title: "Gamma", MediaType: models.KindShow}

	h.fake.trending = models.TrendingSelection{Movie: []models.TrendingItem{alpha}, Show: []models.TrendingItem{}}
	h.fake.searchable[models.KindMovie] = []models.TrendingItem{alpha, beta}
	h.fake.searchable[models.KindShow] = []models.TrendingItem{gamma}
}

func TestTrendingPage_LoadsOncePerSession(t *testing.T) {
	h := newHarness(t)
	seedTrending(h)
	h.login()

	resp, doc := h.get("/trending", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, doc.Find("#selection-movie li").Length())
	assert.Contains(t, doc.Find("#selection-movie").Text(), "Alpha")
	assert.Contains(t, doc.Find("#selection-show").Text(), "No trending shows selected")
	assert.Contains(t, toastTexts(doc), "Trending content loaded")

	_, doc = h.get("/trending", false)
	assert.Empty(t, toastTexts(doc), "the working copy is reused on later visits")
	assert.Contains(t, doc.Find("#trending-panel .caption").Text(), "Loaded")
}

func TestSearchTrending(t *testing.T) {
	h := newHarness(t)
	seedTrending(h)
	h.login()
	h.get("/trending", false)

	_, doc := h.get("/trending/search/movie?query=a", true)
	assert.Equal(t, 0, doc.Find("#results-movie li").Length())
	assert.Empty(t, h.fake.searches, "short queries never reach the API")

	_, doc = h.get("/trending/search/movie?query=al", true)
	button := doc.Find("#result-movie-1 button")
	assert.Equal(t, "Added", button.Text())
	_, disabled := button.Attr("disabled")
	assert.True(t, disabled, "selected results cannot be added twice")

	_, doc = h.get("/trending/search/movie?query=beta", true)
	assert.Equal(t, "Add", doc.Find("#result-movie-2 button[type=submit]").Text())
	assert.Equal(t, "Beta", doc.Find("#result-movie-2 input[name=title]").AttrOr("value", ""))

	_, doc = h.get("/trending/search/show?query=zzz", true)
	assert.Contains(t, doc.Find("#results-show").Text(), "No shows found")

	resp, _ := h.get("/trending/search/book?query=abc", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchTrending_Failure(t *testing.T) {
	h := newHarness(t)
	seedTrending(h)
	h.login()
	h.fake.failSearch = true

	_, doc := h.get("/trending/search/movie?query=alpha", true)
	assert.Contains(t, doc.Find("#results-movie").Text(), "Search failed. Please try again.")
	assert.Contains(t, toastTexts(doc), "Error: search backend down")
}

func TestAddAndRemoveTrending(t *testing.T) {
	h := newHarness(t)
	seedTrending(h)
	h.login()
	h.get("/trending", false)

	beta := url.Values{"id": {"2"}, "title": {"Beta"}, "vote_average": {"6.1"}, "year": {"2021"}}
	_, doc := h.post("/trending/movie/add", beta, true)
	assert.Equal(t, 2, doc.Find("#selection-movie li").Length())
	assert.Contains(t, toastTexts(doc), "Added Beta to trending movies")
	_, disabled := doc.Find("#result-movie-2[hx-swap-oob] button").Attr("disabled")
	assert.True(t, disabled, "the result row is swapped to its added state")

	_, doc = h.post("/trending/movie/add", beta, true)
	assert.Equal(t, 2, doc.Find("#selection-movie li").Length())
	assert.Contains(t, toastTexts(doc), "Beta is already in trending movies")

	_, doc = h.post("/trending/movie/1/remove", nil, true)
	assert.Equal(t, 1, doc.Find("#selection-movie li").Length())
	assert.Contains(t, toastTexts(doc), "Removed Alpha from trending movies")

	st := h.state()
	require.Len(t, st.Trending.Movie, 1)
	assert.Equal(t, int64(2), st.Trending.Movie[0].ID)
	require.NotNil(t, st.Trending.Movie[0].VoteAverage)
	assert.Equal(t, 6.1, *st.Trending.Movie[0].VoteAverage)

	resp, _ := h.post("/trending/movie/add", url.Values{"id": {"x"}}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSaveTrending_ReloadsFromAPI(t *testing.T) {
	h := newHarness(t)
	seedTrending(h)
	h.login()
	h.get("/trending", false)

	h.post("/trending/movie/add", url.Values{"id": {"2"}, "title": {"Beta"}}, true)
	h.post("/trending/movie/1/remove", nil, true)
	h.post("/trending/show/add", url.Values{"id": {"10"}, "title": {"Gamma"}}, true)

	_, doc := h.post("/trending/save", nil, true)
	require.Len(t, h.fake.trendingUpdates, 1)
	assert.Equal(t, []int64{2}, h.fake.trendingUpdates[0].Movie)
	assert.Equal(t, []int64{10}, h.fake.trendingUpdates[0].Show)

	toasts := toastTexts(doc)
	assert.Contains(t, toasts, "Trending configuration saved successfully!")
	assert.Contains(t, toasts, "Trending content loaded")
	assert.Contains(t, doc.Find("#selection-movie").Text(), "Beta")
	assert.Contains(t, doc.Find("#selection-show").Text(), "Gamma")
}

func TestSaveTrending_EmptyListsAreSent(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.get("/trending", false)

	h.post("/trending/save", nil, true)
	require.Len(t, h.fake.trendingUpdates, 1)
	assert.NotNil(t, h.fake.trendingUpdates[0].Movie)
	assert.Empty(t, h.fake.trendingUpdates[0].Movie)
	assert.NotNil(t, h.fake.trendingUpdates[0].Show)
}
