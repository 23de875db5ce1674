package ws

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HandleLobbyWebSocket upgrades the connection and subscribes the caller to
// participant updates for one tournament. The caller is already
// authenticated; user_id is set by the auth middleware.
func HandleLobbyWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid tournament id"})
			return
		}
		userID := c.GetInt("user_id")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade failed for user %d: %v", userID, err)
			return
		}

		client := &Client{
			conn:         conn,
			userID:       userID,
			tournamentID: tournamentID,
			send:         make(chan []byte, 16),
		}
		LobbyHub.register(client)
		log.Printf("[WS] user %d joined lobby %d", userID, tournamentID)

		go client.writePump()
		go client.readPump()
	}
}
