package headers

import (
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

// New applies the standard security headers. HSTS and the HTTPS redirect are
// only enabled when the process terminates TLS itself.
func New(ssl bool) gin.HandlerFunc {
	cfg := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
	if ssl {
		cfg.SSLRedirect = true
		cfg.STSSeconds = 31536000
		cfg.STSIncludeSubdomains = true
	}
	return secure.New(cfg)
}
