package console

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/glefebvre/catalog-console/internal/catalog"
	"github.com/glefebvre/catalog-console/internal/debounce"
	"github.com/glefebvre/catalog-console/internal/history"
	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/glefebvre/catalog-console/internal/notify"
	"github.com/glefebvre/catalog-console/internal/state"
	testutil "github.com/glefebvre/catalog-console/internal/testing"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testToken = "catalog-token"

// fakeCatalog is an in-memory catalog API
type fakeCatalog struct {
	mu sync.Mutex

	users      []models.User
	trending   models.TrendingSelection
	searchable map[models.Kind][]models.TrendingItem
	records    map[string]*models.Record

	expired    bool
	failSearch bool
	failUpdate string

	userUpdates     map[int64]models.UserUpdate
	deleted         []int64
	trendingUpdates []models.TrendingUpdate
	contentUpdates  []string
	searches        []string
}

func recordKey(kind models.Kind, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

func newFakeCatalog(t *testing.T) (*fakeCatalog, *httptest.Server) {
	t.Helper()
	f := &fakeCatalog{
		searchable:  map[models.Kind][]models.TrendingItem{},
		records:     map[string]*models.Record{},
		userUpdates: map[int64]models.UserUpdate{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/login", f.login)
	mux.HandleFunc("GET /api/v1/auth-check", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": true, "user": "admin"})
	}))
	mux.HandleFunc("GET /api/v1/users", f.authed(f.listUsers))
	mux.HandleFunc("GET /api/v1/users/search", f.authed(f.searchUsers))
	mux.HandleFunc("PUT /api/v1/users/{id}", f.authed(f.updateUser))
	mux.HandleFunc("DELETE /api/v1/users/{id}", f.authed(f.deleteUser))
	mux.HandleFunc("GET /api/v1/trending", f.authed(f.getTrending))
	mux.HandleFunc("POST /api/v1/update_trending", f.authed(f.updateTrending))
	mux.HandleFunc("GET /api/v1/search/{kind}", f.authed(f.search))
	mux.HandleFunc("GET /api/v1/getMovieDetails/{id}", f.authed(f.details(models.KindMovie)))
	mux.HandleFunc("GET /api/v1/getShowDetails/{id}", f.authed(f.details(models.KindShow)))
	mux.HandleFunc("PUT /api/v1/updateMovie/{id}", f.authed(f.updateContent(models.KindMovie)))
	mux.HandleFunc("PUT /api/v1/updateShow/{id}", f.authed(f.updateContent(models.KindShow)))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return f, server
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (f *fakeCatalog) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = true
}

func (f *fakeCatalog) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		expired := f.expired
		f.mu.Unlock()
		if expired || r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		next(w, r)
	}
}

func (f *fakeCatalog) login(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	if r.PostForm.Get("username") != "admin" || r.PostForm.Get("password") != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": testToken, "token_type": "bearer"})
}

func (f *fakeCatalog) listUsers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := append([]models.User{}, f.users...)
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users, "count": len(users)})
}

func (f *fakeCatalog) searchUsers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	query := strings.ToLower(r.URL.Query().Get("query"))
	f.searches = append(f.searches, query)
	if f.failSearch {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "search backend down"})
		return
	}

	matches := []models.User{}
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.Username), query) {
			matches = append(matches, u)
		}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (f *fakeCatalog) updateUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var update models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.userUpdates[id] = update
	for i := range f.users {
		if f.users[i].UserID == id {
			update.Apply(&f.users[i])
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (f *fakeCatalog) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	kept := f.users[:0]
	for _, u := range f.users {
		if u.UserID != id {
			kept = append(kept, u)
		}
	}
	f.users = kept
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (f *fakeCatalog) getTrending(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.trending)
}

func (f *fakeCatalog) updateTrending(w http.ResponseWriter, r *http.Request) {
	var update models.TrendingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.trendingUpdates = append(f.trendingUpdates, update)
	f.trending = models.TrendingSelection{
		Movie: f.pick(models.KindMovie, update.Movie),
		Show:  f.pick(models.KindShow, update.Show),
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (f *fakeCatalog) pick(kind models.Kind, ids []int64) []models.TrendingItem {
	out := []models.TrendingItem{}
	for _, id := range ids {
		for _, item := range f.searchable[kind] {
			if item.ID == id {
				out = append(out, item)
			}
		}
	}
	return out
}

func (f *fakeCatalog) search(w http.ResponseWriter, r *http.Request) {
	kind := models.Kind(r.PathValue("kind"))
	query := strings.ToLower(r.URL.Query().Get("query"))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, query)
	if f.failSearch {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "search backend down"})
		return
	}
	results := []models.TrendingItem{}
	for _, item := range f.searchable[kind] {
		if strings.Contains(strings.ToLower(item.Title), query) {
			results = append(results, item)
		}
	}
	writeJSON(w, http.StatusOK, results)
}

func (f *fakeCatalog) details(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

		f.mu.Lock()
		rec, ok := f.records[recordKey(kind, id)]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": fmt.Sprintf("%s not found", kind)})
			return
		}

		data, _ := json.Marshal(rec.Payload())
		var body map[string]interface{}
		json.Unmarshal(data, &body)
		body["id"] = id
		writeJSON(w, http.StatusOK, body)
	}
}

func (f *fakeCatalog) updateContent(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		raw, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.contentUpdates = append(f.contentUpdates, string(raw))
		if f.failUpdate != "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": f.failUpdate})
			return
		}

		key := recordKey(kind, id)
		if current, ok := f.records[key]; ok {
			if stored, _ := json.Marshal(current.Payload()); string(stored) == strings.TrimSpace(string(raw)) {
				writeJSON(w, http.StatusOK, map[string]string{"status": "no_changes", "message": "No changes detected"})
				return
			}
		}

		withID := fmt.Sprintf(`{"id":%d,%s`, id, strings.TrimPrefix(strings.TrimSpace(string(raw)), "{"))
		rec, err := models.DecodeRecord(kind, []byte(withID))
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
			return
		}
		f.records[key] = rec
		writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Updated"})
	}
}

// harness drives a console server through a cookie-keeping client
type harness struct {
	t       *testing.T
	fake    *fakeCatalog
	db      *gorm.DB
	server  *httptest.Server
	client  *http.Client
	console *Server
}

type harnessOption func(*Deps, *Options)

func withCSRF() harnessOption {
	return func(_ *Deps, o *Options) { o.CSRF = true }
}

func withDebounce(d time.Duration) harnessOption {
	return func(deps *Deps, _ *Options) { deps.Debounce = debounce.New(d) }
}

func withHealth(fn func() error) harnessOption {
	return func(_ *Deps, o *Options) { o.Health = fn }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	fake, api := newFakeCatalog(t)
	db := testutil.TestDB(t)

	deps := Deps{
		Catalog:  catalog.New(catalog.Config{BaseURL: api.URL, Timeout: 5 * time.Second}),
		Store:    state.NewGormStore(db),
		History:  history.NewRecorder(db),
		Notifier: notify.New(time.Second),
		Debounce: debounce.New(0),
	}
	options := Options{SessionSecret: "test-session-secret-0123456789"}
	for _, opt := range opts {
		opt(&deps, &options)
	}

	console := NewServer(deps, options)
	server := httptest.NewServer(console.Handler())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &harness{
		t:      t,
		fake:   fake,
		db:     db,
		server: server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		console: console,
	}
}

func (h *harness) do(method, path string, form url.Values, htmx bool) (*http.Response, *goquery.Document) {
	h.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, h.server.URL+path, body)
	require.NoError(h.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}

	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(h.t, err)
	return resp, doc
}

func (h *harness) get(path string, htmx bool) (*http.Response, *goquery.Document) {
	h.t.Helper()
	return h.do(http.MethodGet, path, nil, htmx)
}

func (h *harness) post(path string, form url.Values, htmx bool) (*http.Response, *goquery.Document) {
	h.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	return h.do(http.MethodPost, path, form, htmx)
}

func (h *harness) login() {
	h.t.Helper()
	resp, _ := h.post("/login", url.Values{"username": {"admin"}, "password": {"secret"}}, false)
	require.Equal(h.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(h.t, "/", resp.Header.Get("Location"))
}

// state returns the only console state row of the test database
func (h *harness) state() *models.ConsoleState {
	h.t.Helper()
	var st models.ConsoleState
	require.NoError(h.t, h.db.First(&st).Error)
	return &st
}

func toastTexts(doc *goquery.Document) []string {
	var out []string
	doc.Find("#toasts .toast-message").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}

// formValues reads the successful controls of a form in document order,
// the way a browser encodes it
func formValues(form *goquery.Selection) url.Values {
	values := url.Values{}
	form.Find("input, textarea, select").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok {
			return
		}
		switch goquery.NodeName(s) {
		case "textarea":
			values.Add(name, s.Text())
		case "select":
			values.Add(name, s.Find("option[selected]").AttrOr("value", ""))
		default:
			typ := s.AttrOr("type", "text")
			if typ == "checkbox" {
				if _, checked := s.Attr("checked"); !checked {
					return
				}
			}
			values.Add(name, s.AttrOr("value", ""))
		}
	})
	return values
}
