package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "jobboard_flash"

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    string `json:"k"` // success | error
	Title   string `json:"t"`
	Message string `json:"m"`
}

func (s *Server) setFlash(c *gin.Context, kind, title, message string) {
	raw, err := json.Marshal(Flash{Kind: kind, Title: title, Message: message})
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 60, "/", "", s.cfg.CookieSecure, true)
}

// popFlash reads and clears the pending flash, if any.
func (s *Server) popFlash(c *gin.Context) *Flash {
	v, err := c.Cookie(flashCookie)
	if err != nil || v == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", s.cfg.CookieSecure, true)
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}
