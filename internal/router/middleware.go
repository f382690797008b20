package router

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
)

// URLMiddleware stores the API base URL on the context so that
// controllers can generate absolute links.
func URLMiddleware(url *url.URL) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(models.DBContextURL), url.String())
		c.Next()
	}
}
