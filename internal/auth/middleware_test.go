package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/sync", DeviceAuth(svc), func(c *gin.Context) {
		c.String(http.StatusOK, DeviceName(c))
	})
	r.GET("/admin", AdminAuth(svc), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestDeviceAuth_BasicPlaintext(t *testing.T) {
	svc := setupService(t)
	_, err := svc.RegisterDevice(context.Background(), "kindle", "secret")
	require.NoError(t, err)
	r := protectedRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/sync", nil)
	req.SetBasicAuth("kindle", "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kindle", w.Body.String())
}

func TestDeviceAuth_KOReaderHeaders(t *testing.T) {
	svc := setupService(t)
	_, err := svc.RegisterDevice(context.Background(), "kindle", "secret")
	require.NoError(t, err)
	r := protectedRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/sync", nil)
	req.Header.Set("X-Auth-User", "kindle")
	req.Header.Set("X-Auth-Key", DigestSyncPassword("secret"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kindle", w.Body.String())
}

func TestDeviceAuth_WrongPassword(t *testing.T) {
	svc := setupService(t)
	_, err := svc.RegisterDevice(context.Background(), "kindle", "secret")
	require.NoError(t, err)
	r := protectedRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/sync", nil)
	req.SetBasicAuth("kindle", "nope")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "kompanion-sync")
}

func TestDeviceAuth_NoCredentials(t *testing.T) {
	svc := setupService(t)
	r := protectedRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/sync", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuth(t *testing.T) {
	svc := setupService(t)
	r := protectedRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.SetBasicAuth("admin", "hunter2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.SetBasicAuth("admin", "wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
