package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect4-engine/pkg/auth"
)

// GameIDKey is where GameTokenMiddleware leaves the authorised game id.
const GameIDKey = "game_id"

type TokenValidator interface {
	ValidateGameToken(token string) (*auth.GameClaims, error)
}

// GameTokenMiddleware requires a bearer game token whose game id matches
// the :id path parameter.
func GameTokenMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing game token"})
			return
		}

		claims, err := tokens.ValidateGameToken(tokenString)
		if err != nil {
			log.Debug().Err(err).Str("component", "auth").Msg("rejected game token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid game token"})
			return
		}

		if id := c.Param("id"); id != "" && id != claims.GameID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token does not match game"})
			return
		}

		c.Set(GameIDKey, claims.GameID)
		c.Next()
	}
}
