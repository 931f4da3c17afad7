// Package middleware resolves the browser session and the current user for every request.
package middleware

import (
	"log"
	"net/http"
	"strings"

	"walletlab/domain/core"
	"walletlab/domain/user"
	"walletlab/ports"

	"github.com/gin-gonic/gin"
)

// Context keys set by the middleware
const (
	SessionKey = "sessionID"
	UserKey    = "user"
)

// Identity headers supplied by the hosting environment
const (
	HeaderUserID     = "X-User-Id"
	HeaderUserName   = "X-User-Name"
	HeaderUserAvatar = "X-User-Avatar"
)

// Session reads the session cookie, issuing a new UUID when it is missing or malformed
func Session(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id core.SessionID
		if raw, err := c.Cookie(cookieName); err == nil {
			id, err = core.ParseSessionID(raw)
			if err != nil {
				log.Printf("[Session] Ignoring malformed session cookie: %v", err)
			}
		}
		if id == "" {
			id = core.SessionID(core.NewID())
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, id.String(), 0, "/", "", false, true)
		}

		c.Set(SessionKey, id)
		c.Next()
	}
}

// CurrentUser resolves the user from the identity headers, falling back to the default user.
// The user row is upserted so presets can reference it.
func CurrentUser(users ports.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := user.Default()
		if id := strings.TrimSpace(c.GetHeader(HeaderUserID)); id != "" {
			u = user.New(core.UserID(id), c.GetHeader(HeaderUserName), c.GetHeader(HeaderUserAvatar))
		}

		if users != nil {
			if err := users.Upsert(c.Request.Context(), u); err != nil {
				// Don't fail the request, the workspace works without persistence
				log.Printf("[CurrentUser] Failed to upsert user %s: %v", u.ID, err)
			}
		}

		c.Set(UserKey, u)
		c.Next()
	}
}

// GetSessionID returns the session resolved by Session
func GetSessionID(c *gin.Context) core.SessionID {
	if v, ok := c.Get(SessionKey); ok {
		if id, ok := v.(core.SessionID); ok {
			return id
		}
	}
	return ""
}

// GetUser returns the user resolved by CurrentUser, or the default user
func GetUser(c *gin.Context) *user.User {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(*user.User); ok {
			return u
		}
	}
	return user.Default()
}
