// README: Anonymous rider session key carried in X-Session-ID.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderSessionID = "X-Session-ID"

// sessionKey returns the caller's session id, minting one (and echoing it) when absent.
func sessionKey(c *gin.Context) string {
	id := c.GetHeader(HeaderSessionID)
	if id == "" || len(id) > 64 {
		id = uuid.NewString()
	}
	c.Header(HeaderSessionID, id)
	return id
}
