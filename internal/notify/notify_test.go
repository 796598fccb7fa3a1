package notify

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultDuration(t *testing.T) {
	assert.Equal(t, DefaultDuration, New(0).duration)
	assert.Equal(t, 2*time.Second, New(2*time.Second).duration)
}

func TestMake_UniqueIDs(t *testing.T) {
	n := New(time.Second)
	a := n.Make(Success, "saved")
	b := n.Make(Success, "saved")

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int64(1000), a.Millis())
}

func TestPushAndPop_AcrossRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions("test", cookie.NewStore([]byte("0123456789abcdef"))))

	n := New(3 * time.Second)
	router.GET("/push", func(c *gin.Context) {
		session := sessions.Default(c)
		n.Success(session, "User updated successfully")
		n.Error(session, "Update failed: boom")
		require.NoError(t, session.Save())
		c.Status(http.StatusNoContent)
	})

	var popped []Notification
	router.GET("/pop", func(c *gin.Context) {
		session := sessions.Default(c)
		popped = Pop(session)
		require.NoError(t, session.Save())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/push", nil))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/pop", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Len(t, popped, 2)
	assert.Equal(t, Success, popped[0].Kind)
	assert.Equal(t, "User updated successfully", popped[0].Message)
	assert.Equal(t, Error, popped[1].Kind)
	assert.Equal(t, 3*time.Second, popped[1].Duration)

	// Flashes are consumed on read
	req = httptest.NewRequest(http.MethodGet, "/pop", nil)
	for _, ck := range w.Result().Cookies() {
		req.AddCookie(ck)
	}
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, popped)
}
