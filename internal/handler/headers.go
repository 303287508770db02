package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Revalidation intervals mirrored into response headers. The CDN serves
// within sMaxAge and revalidates in the background up to staleWindow.
const (
	sMaxAgeSeconds     = 3600
	staleWindowSeconds = 86400
)

// setCacheHeaders marks a read endpoint as publicly cacheable with
// stale-while-revalidate semantics matching the in-process cache window.
func setCacheHeaders(c *gin.Context) {
	c.Header("Cache-Control", fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d",
		sMaxAgeSeconds, staleWindowSeconds))
}
