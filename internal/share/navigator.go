package share

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Navigator sends the visitor to a composed link
type Navigator interface {
	// Navigate replaces the current page
	Navigate(c *gin.Context, target string)
	// Open shows target in a new browsing context
	Open(c *gin.Context, target string)
}

// HTTPNavigator answers with redirects. Pages submit the share forms with
// target="_blank", so the redirect of Open lands in the new tab.
type HTTPNavigator struct{}

// Navigate implements Navigator
func (HTTPNavigator) Navigate(c *gin.Context, target string) {
	c.Redirect(http.StatusSeeOther, target)
}

// Open implements Navigator
func (HTTPNavigator) Open(c *gin.Context, target string) {
	c.Redirect(http.StatusSeeOther, target)
}
