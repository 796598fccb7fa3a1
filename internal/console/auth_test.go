package console

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/glefebvre/catalog-console/internal/models"
	testutil "github.com/glefebvre/catalog-console/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireToken_RedirectsToLogin(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.get("/users", false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = h.get("/users", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("HX-Redirect"))
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	resp, doc := h.get("/login", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, doc.Find("form[action='/login'] input[name=password]").Length())
	assert.Equal(t, 0, doc.Find("nav").Length(), "navigation is hidden before sign in")

	resp, doc = h.post("/login", url.Values{"username": {"admin"}, "password": {""}}, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, toastTexts(doc), "Username and password are required")

	resp, doc = h.post("/login", url.Values{"username": {"admin"}, "password": {"wrong"}}, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, toastTexts(doc), "Login failed: Incorrect username or password")
	assert.Equal(t, "admin", doc.Find("input[name=username]").AttrOr("value", ""))

	h.login()

	resp, _ = h.get("/", false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/trending", resp.Header.Get("Location"))

	resp, _ = h.get("/login", false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "signed-in operators skip the login form")
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.fake.users = []models.User{testutil.SampleUser(1)}
	h.login()
	h.post("/users/load", nil, true)
	testutil.AssertCount(t, h.db, &models.ConsoleState{}, 1, "state after load")

	resp, _ := h.post("/logout", nil, false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	testutil.AssertCount(t, h.db, &models.ConsoleState{}, 0, "state after logout")

	resp, _ = h.get("/users", false)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, doc := h.get("/login", false)
	assert.Contains(t, toastTexts(doc), "Signed out")
}

func TestSessionExpired_SignsOut(t *testing.T) {
	h := newHarness(t)
	h.fake.users = []models.User{testutil.SampleUser(1)}
	h.login()
	h.post("/users/load", nil, true)

	h.fake.expire()

	resp, _ := h.post("/users/load", nil, true)
	assert.Equal(t, "/login", resp.Header.Get("HX-Redirect"))
	testutil.AssertCount(t, h.db, &models.ConsoleState{}, 0, "state is dropped with the token")

	resp, _ = h.get("/users", false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, doc := h.get("/login", false)
	assert.Contains(t, toastTexts(doc), "Session expired. Please log in again.")
}

func TestIndex_ExpiredTokenSignsOut(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.fake.expire()

	resp, _ := h.get("/", false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}
