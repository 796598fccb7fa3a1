package console

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/glefebvre/catalog-console/internal/notify"
	"github.com/glefebvre/catalog-console/internal/web"
	"maragu.dev/gomponents"
)

func (s *Server) usersPage(c *gin.Context) {
	s.withState(c, func(st *models.ConsoleState) {
		s.page(c, http.StatusOK, "Users", "users", usersPanel(st, s.csrfToken(c)))
	})
}

// loadUsers replaces the loaded list and leaves search mode
func (s *Server) loadUsers(c *gin.Context) {
	s.withState(c, func(st *models.ConsoleState) {
		users, err := s.client(c).ListUsers(c.Request.Context())
		if err != nil {
			if s.fail(c, "Failed to load users: ", err) {
				return
			}
		} else {
			st.Users = users
			st.UserQuery = ""
			st.Matches = nil
			s.saveState(c, st)
			s.notify(c, notify.Success, fmt.Sprintf("Loaded %d users", len(users)))
		}

		s.respond(c, "/users", func() gomponents.Node { return usersPanel(st, s.csrfToken(c)) })
	})
}

// searchUsers is debounced per session. A superseded request answers 204 so
// htmx leaves the results untouched.
func (s *Server) searchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))

	s.withState(c, func(st *models.ConsoleState) {
		if query == "" {
			st.UserQuery = ""
			st.Matches = nil
			s.saveState(c, st)
			s.renderUserResults(c, st)
			return
		}

		var matches []models.User
		ran, err := s.deps.Debounce.Do(c.Request.Context(), c.GetString(ctxSessionKey)+":users", func() error {
			var err error
			matches, err = s.client(c).SearchUsers(c.Request.Context(), query)
			return err
		})
		if !ran && err == nil {
			c.Status(http.StatusNoContent)
			return
		}
		if err != nil {
			if s.fail(c, "Search failed: ", err) {
				return
			}
			s.renderUserResults(c, st)
			return
		}

		st.UserQuery = query
		st.Matches = matches
		s.saveState(c, st)
		s.renderUserResults(c, st)
	})
}

func (s *Server) renderUserResults(c *gin.Context, st *models.ConsoleState) {
	if web.IsHTMX(c) {
		s.fragment(c, http.StatusOK, userResults(st, s.csrfToken(c)))
		return
	}
	s.page(c, http.StatusOK, "Users", "users", usersPanel(st, s.csrfToken(c)))
}

// editUser opens the edit form of a user from the loaded list or the
// current search matches
func (s *Server) editUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		c.String(http.StatusBadRequest, "Invalid user id")
		return
	}

	s.withState(c, func(st *models.ConsoleState) {
		user, found := st.FindUser(id)
		if !found {
			s.notify(c, notify.Error, "User not found")
			if web.IsHTMX(c) {
				s.fragment(c, http.StatusOK, userEditor(nil, s.csrfToken(c)))
				return
			}
			s.page(c, http.StatusNotFound, "Users", "users", usersPanel(st, s.csrfToken(c)))
			return
		}

		st.EditingUserID = &user.UserID
		s.saveState(c, st)

		if web.IsHTMX(c) {
			s.fragment(c, http.StatusOK, userEditor(user, s.csrfToken(c)))
			return
		}
		s.page(c, http.StatusOK, "Users", "users", usersPanel(st, s.csrfToken(c)))
	})
}

func (s *Server) cancelUserEdit(c *gin.Context) {
	s.withState(c, func(st *models.ConsoleState) {
		st.EditingUserID = nil
		s.saveState(c, st)
		s.respond(c, "/users", func() gomponents.Node { return userEditor(nil, "") })
	})
}

// updateUser saves the edit form, then refreshes what the operator is
// looking at: the active search, or the loaded list
func (s *Server) updateUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		c.String(http.StatusBadRequest, "Invalid user id")
		return
	}

	update := models.NewUserUpdate(
		c.PostForm("username"),
		c.PostForm("first_name"),
		c.PostForm("last_name"),
		c.PostForm("slimit"),
		c.PostForm("is_active") == "true",
	)

	s.withState(c, func(st *models.ConsoleState) {
		client := s.client(c)
		if err := client.UpdateUser(c.Request.Context(), id, update); err != nil {
			if s.fail(c, "Update failed: ", err) {
				return
			}
			s.respond(c, "/users", func() gomponents.Node { return usersPanel(st, s.csrfToken(c)) })
			return
		}

		s.notify(c, notify.Success, "User updated successfully")
		st.EditingUserID = nil
		if user, found := st.FindUser(id); found {
			update.Apply(user)
		}

		if st.UserQuery != "" {
			matches, err := client.SearchUsers(c.Request.Context(), st.UserQuery)
			if err != nil {
				if s.fail(c, "Search failed: ", err) {
					return
				}
			} else {
				st.Matches = matches
			}
		} else {
			users, err := client.ListUsers(c.Request.Context())
			if err != nil {
				if s.fail(c, "Failed to load users: ", err) {
					return
				}
			} else {
				st.Users = users
			}
		}

		s.saveState(c, st)
		s.respond(c, "/users", func() gomponents.Node { return usersPanel(st, s.csrfToken(c)) })
	})
}

func (s *Server) deleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		c.String(http.StatusBadRequest, "Invalid user id")
		return
	}

	s.withState(c, func(st *models.ConsoleState) {
		if err := s.client(c).DeleteUser(c.Request.Context(), id); err != nil {
			if s.fail(c, "Delete failed: ", err) {
				return
			}
			s.respond(c, "/users", func() gomponents.Node { return usersPanel(st, s.csrfToken(c)) })
			return
		}

		st.DropUser(id)
		s.saveState(c, st)
		s.notify(c, notify.Success, "User deleted successfully")
		s.respond(c, "/users", func() gomponents.Node { return usersPanel(st, s.csrfToken(c)) })
	})
}
