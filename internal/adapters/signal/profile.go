package signal

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const displayNameKey = "display_name"

// RememberedName is the display name stored in the cookie session, or "".
func RememberedName(c *gin.Context) string {
	name, _ := sessions.Default(c).Get(displayNameKey).(string)
	return name
}

// RememberName stores name in the cookie session for the next connection.
func RememberName(c *gin.Context, name string) error {
	s := sessions.Default(c)
	s.Set(displayNameKey, name)
	return s.Save()
}
