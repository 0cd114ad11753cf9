package http

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var contentTypes = map[string]string{
	".html": "text/html",
	".js":   "text/javascript",
	".css":  "text/css",
	".m4a":  "audio/mp4",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".ico":  "image/x-icon",
	".mp3":  "audio/mpeg",
}

// StaticHandler serves the client files from publicDir. "/" maps to
// index.html. It has no interaction with room state.
func StaticHandler(publicDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if reqPath == "/" {
			reqPath = "/index.html"
		}
		// Clean before joining so "../" cannot escape the public root.
		filePath := filepath.Join(publicDir, filepath.Clean("/"+reqPath))

		content, err := os.ReadFile(filePath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				c.String(http.StatusNotFound, "File not found")
				return
			}
			log.Error().Str("path", filePath).Err(err).Msg("static read failed")
			c.String(http.StatusInternalServerError, "Server Error: %v", readErrCode(err))
			return
		}

		contentType, ok := contentTypes[strings.ToLower(filepath.Ext(filePath))]
		if !ok {
			contentType = "text/html"
		}
		c.Data(http.StatusOK, contentType, content)
	}
}

func readErrCode(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
