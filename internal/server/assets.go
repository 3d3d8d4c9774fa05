package server

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/smart-harvest/internal/app/views"
)

// SetupAssets configures static asset serving for the Gin router. Call it
// before the session middleware so assets skip the route guard.
func SetupAssets(r *gin.Engine) error {
	staticFiles, err := fs.Sub(views.Assets, "assets")
	if err != nil {
		return err
	}
	r.StaticFS("/assets", http.FS(staticFiles))
	return nil
}
