package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeviceNameKey is the gin context key the device middleware stores the
// authenticated device name under.
const DeviceNameKey = "auth_device_name"

// DeviceAuth gates a route group behind device credentials. Two forms are
// accepted: standard basic auth with the plaintext password, and KOReader's
// X-Auth-User/X-Auth-Key header pair where the key is already the MD5
// digest.
func DeviceAuth(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, supplied, digested, ok := deviceCredentials(c)
		if !ok {
			unauthorized(c, "kompanion-sync")
			return
		}

		device, err := svc.VerifyDevice(c.Request.Context(), name, supplied, digested)
		if err != nil {
			unauthorized(c, "kompanion-sync")
			return
		}

		c.Set(DeviceNameKey, device.Name)
		c.Next()
	}
}

// AdminAuth gates a route group behind the configured admin pair.
func AdminAuth(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || svc.VerifyAdmin(username, password) != nil {
			unauthorized(c, "kompanion-admin")
			return
		}
		c.Next()
	}
}

// DeviceName reads the authenticated device name set by DeviceAuth.
func DeviceName(c *gin.Context) string {
	return c.GetString(DeviceNameKey)
}

func deviceCredentials(c *gin.Context) (name, supplied string, digested, ok bool) {
	if name, password, hasBasic := c.Request.BasicAuth(); hasBasic {
		return name, password, false, true
	}
	name = c.GetHeader("X-Auth-User")
	key := c.GetHeader("X-Auth-Key")
	if name != "" && key != "" {
		return name, key, true, true
	}
	return "", "", false, false
}

func unauthorized(c *gin.Context, realm string) {
	c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}
