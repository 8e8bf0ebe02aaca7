package realtime

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func wsRouter(validate func(string) (string, error), mayWatch OwnerCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	hub := NewHub(zap.NewNop(), nil, nil)
	r := gin.New()
	r.GET("/ws", ServeWs(hub, zap.NewNop(), validate, mayWatch))
	return r
}

func wsGet(r *gin.Engine, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ws?"+query, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestServeWsRequiresFormIDAndToken(t *testing.T) {
	r := wsRouter(func(string) (string, error) { return uuid.NewString(), nil }, nil)

	assert.Equal(t, http.StatusBadRequest, wsGet(r, "").Code)
	assert.Equal(t, http.StatusBadRequest, wsGet(r, "form_id=not-a-uuid&token=t").Code)
}

func TestServeWsRejectsInvalidToken(t *testing.T) {
	r := wsRouter(func(string) (string, error) { return "", errors.New("bad signature") }, nil)

	w := wsGet(r, "form_id="+uuid.NewString()+"&token=bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServeWsRejectsNonUUIDSubject(t *testing.T) {
	r := wsRouter(func(string) (string, error) { return "not-a-uuid", nil }, nil)

	w := wsGet(r, "form_id="+uuid.NewString()+"&token=t")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServeWsRejectsNonOwner(t *testing.T) {
	r := wsRouter(
		func(string) (string, error) { return uuid.NewString(), nil },
		func(formID, userID uuid.UUID) bool { return false },
	)

	w := wsGet(r, "form_id="+uuid.NewString()+"&token=t")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
