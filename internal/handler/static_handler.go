package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/school-board-api/pkg/errors"
	"github.com/noah-isme/school-board-api/pkg/response"
)

// Pages lists the HTML pages served from the static directory.
var Pages = []string{
	"index.html",
	"schoollogin.html",
	"admin.html",
	"faculty.html",
	"student.html",
	"guestlogin.html",
}

// StaticHandler serves the board pages from a directory on disk.
type StaticHandler struct {
	dir string
}

// NewStaticHandler builds a handler rooted at dir.
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir}
}

// Page returns a handler that serves the named file. http.ServeContent is
// used instead of c.File, which would redirect /index.html to /.
func (h *StaticHandler) Page(name string) gin.HandlerFunc {
	path := filepath.Join(h.dir, filepath.Base(name))
	return func(c *gin.Context) {
		f, err := os.Open(path)
		if err != nil {
			h.NotFound(c)
			return
		}
		defer f.Close() //nolint:errcheck
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			h.NotFound(c)
			return
		}
		http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	}
}

// NotFound answers unknown routes and missing pages.
func (h *StaticHandler) NotFound(c *gin.Context) {
	response.Error(c, appErrors.ErrNotFound)
}
