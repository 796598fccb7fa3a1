package console

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/glefebvre/catalog-console/internal/notify"
	"github.com/glefebvre/catalog-console/internal/web"
	"maragu.dev/gomponents"
)

// trendingPage loads the selection from the API on the first visit of a
// session; later visits show the session's working copy
func (s *Server) trendingPage(c *gin.Context) {
	s.withState(c, func(st *models.ConsoleState) {
		if st.TrendingLoadedAt == nil {
			if s.reloadTrending(c, st) {
				return
			}
		}
		s.page(c, http.StatusOK, "Trending", "trending", trendingPanel(st, s.csrfToken(c)))
	})
}

func (s *Server) refreshTrending(c *gin.Context) {
	s.withState(c, func(st *models.ConsoleState) {
		if s.reloadTrending(c, st) {
			return
		}
		s.respond(c, "/trending", func() gomponents.Node { return trendingPanel(st, s.csrfToken(c)) })
	})
}

// reloadTrending replaces the working copy with the API's selection. It
// returns true when the session expired and a response was written.
func (s *Server) reloadTrending(c *gin.Context, st *models.ConsoleState) bool {
	sel, err := s.client(c).Trending(c.Request.Context())
	if err != nil {
		return s.fail(c, "Failed to load trending content: ", err)
	}

	now := time.Now()
	st.Trending = sel
	st.TrendingLoadedAt = &now
	s.saveState(c, st)
	s.notify(c, notify.Success, "Trending content loaded")
	return false
}

// saveTrending posts the selected ids, then reloads the selection so the
// page shows what the API stored
func (s *Server) saveTrending(c *gin.Context) {
	s.withState(c, func(st *models.ConsoleState) {
		if _, err := s.client(c).UpdateTrending(c.Request.Context(), st.Trending); err != nil {
			if s.fail(c, "Error: ", err) {
				return
			}
			s.respond(c, "/trending", func() gomponents.Node { return trendingPanel(st, s.csrfToken(c)) })
			return
		}

		s.notify(c, notify.Success, "Trending configuration saved successfully!")
		if s.reloadTrending(c, st) {
			return
		}
		s.respond(c, "/trending", func() gomponents.Node { return trendingPanel(st, s.csrfToken(c)) })
	})
}

// searchTrending looks up catalog titles to add. Queries shorter than the
// configured minimum clear the results; bursts are debounced per session
// and kind.
func (s *Server) searchTrending(c *gin.Context) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid content kind")
		return
	}
	query := strings.TrimSpace(c.Query("query"))

	s.withState(c, func(st *models.ConsoleState) {
		if len([]rune(query)) < s.opts.SearchMinChars {
			s.fragment(c, http.StatusOK, searchResults(kind, nil, st, s.csrfToken(c), ""))
			return
		}

		var results []models.TrendingItem
		ran, err := s.deps.Debounce.Do(c.Request.Context(), c.GetString(ctxSessionKey)+":trending:"+string(kind), func() error {
			var err error
			results, err = s.client(c).Search(c.Request.Context(), kind, query)
			return err
		})
		if !ran && err == nil {
			c.Status(http.StatusNoContent)
			return
		}
		if err != nil {
			if s.fail(c, "Error: ", err) {
				return
			}
			s.fragment(c, http.StatusOK, searchResults(kind, nil, st, s.csrfToken(c), "Search failed. Please try again."))
			return
		}

		empty := ""
		if len(results) == 0 {
			empty = fmt.Sprintf("No %ss found", kind)
		}
		s.fragment(c, http.StatusOK, searchResults(kind, results, st, s.csrfToken(c), empty))
	})
}

// addTrending adds a search result to the selection. The result row is
// swapped out of band so it shows as already added.
func (s *Server) addTrending(c *gin.Context) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid content kind")
		return
	}
	item, ok := trendingItemFromForm(c, kind)
	if !ok {
		c.String(http.StatusBadRequest, "Invalid trending item")
		return
	}

	s.withState(c, func(st *models.ConsoleState) {
		if st.Trending.Add(kind, item) {
			s.saveState(c, st)
			s.notify(c, notify.Success, fmt.Sprintf("Added %s to trending %ss", item.Title, kind))
		} else {
			s.notify(c, notify.Info, fmt.Sprintf("%s is already in trending %ss", item.Title, kind))
		}

		token := s.csrfToken(c)
		if web.IsHTMX(c) {
			s.fragment(c, http.StatusOK, selectionList(kind, st, token), resultRow(kind, item, true, token, true))
			return
		}
		s.saveSession(c)
		web.Redirect(c, "/trending")
	})
}

func (s *Server) removeTrending(c *gin.Context) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid content kind")
		return
	}
	id, ok := paramID(c)
	if !ok {
		c.String(http.StatusBadRequest, "Invalid content id")
		return
	}

	s.withState(c, func(st *models.ConsoleState) {
		var title string
		for _, item := range st.Trending.Items(kind) {
			if item.ID == id {
				title = item.Title
			}
		}
		if st.Trending.Remove(kind, id) {
			s.saveState(c, st)
			s.notify(c, notify.Success, fmt.Sprintf("Removed %s from trending %ss", title, kind))
		}

		s.respond(c, "/trending", func() gomponents.Node { return selectionList(kind, st, s.csrfToken(c)) })
	})
}

func trendingItemFromForm(c *gin.Context, kind models.Kind) (models.TrendingItem, bool) {
	id, err := strconv.ParseInt(c.PostForm("id"), 10, 64)
	if err != nil || id <= 0 {
		return models.TrendingItem{}, false
	}

	item := models.TrendingItem{
		ID:        id,
		Title:     strings.TrimSpace(c.PostForm("title")),
		Poster:    c.PostForm("poster"),
		Year:      c.PostForm("year"),
		MediaType: kind,
	}
	if item.Title == "" {
		item.Title = fmt.Sprintf("#%d", id)
	}
	if v, err := strconv.ParseFloat(c.PostForm("vote_average"), 64); err == nil {
		item.VoteAverage = &v
	}
	return item, true
}
