package web

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobboard/internal/client"
	"github.com/joseph-ayodele/jobboard/internal/common"
	"github.com/joseph-ayodele/jobboard/internal/session"
)

const (
	keyStore     = "jobboard.store"
	keySessionID = "jobboard.sid"
	headerReqID  = "X-Request-ID"
)

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(headerReqID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Header(headerReqID, reqID)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), reqID))

		c.Next()

		attrs := []any{
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Error("web.request", attrs...)
			return
		}
		s.logger.Info("web.request", attrs...)
	}
}

// withSession resolves the session cookie, issuing one on first visit or when
// the cookie is not an id this server could have issued, and binds the
// session's tokens for the rest of the chain.
func (s *Server) withSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(s.cfg.CookieName)
		if err != nil || common.UUID(s.cfg.CookieName, sid) != nil {
			sid = session.NewID()
			s.setSessionCookie(c, sid)
		}
		c.Set(keySessionID, sid)
		c.Set(keyStore, session.Bind(s.sessions, sid))
		c.Request = c.Request.WithContext(common.WithSessionID(c.Request.Context(), sid))
		c.Next()
	}
}

func (s *Server) setSessionCookie(c *gin.Context, sid string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.CookieName, sid, int(s.cfg.CookieMaxAge.Seconds()), "/", "", s.cfg.CookieSecure, true)
}

// requireAuth sends visitors without an access token to the login page.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.Authenticated(c.Request.Context(), storeOf(c)) {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, loginURL(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

func storeOf(c *gin.Context) session.TokenStore {
	if v, ok := c.Get(keyStore); ok {
		if st, ok := v.(session.TokenStore); ok {
			return st
		}
	}
	return nil
}

// apiFor returns the shared client bound to the caller's session.
func (s *Server) apiFor(c *gin.Context) *client.Client {
	return s.api.WithStore(storeOf(c))
}

func loginURL(next string) string {
	if !safeNext(next) || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// safeNext only allows local absolute paths as post-login targets.
func safeNext(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\")
}
