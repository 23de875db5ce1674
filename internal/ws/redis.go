package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

const lobbyChannel = "lobby_updates"

var rdbClient *redis.Client

func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

type lobbyEvent struct {
	Type                string `json:"type"`
	TournamentID        int    `json:"tournament_id"`
	CurrentParticipants int    `json:"current_participants"`
	MaxParticipants     int    `json:"max_participants"`
}

// StartLobbySubscriber subscribes to the lobby_updates channel and fans
// incoming events out to connected lobby clients. Publishing through Redis
// keeps lobbies in sync when the API runs as more than one instance.
func StartLobbySubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; lobby subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, lobbyChannel)
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] lobby_updates subscriber started")
		for msg := range ch {
			var event lobbyEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("[WS] invalid lobby payload: %v", err)
				continue
			}
			LobbyHub.BroadcastToLobby(event.TournamentID, event)
		}
	}()
}

// Notifier publishes participant updates to the lobby channel. It satisfies
// the registration coordinator's LobbyNotifier.
type Notifier struct{}

func (Notifier) NotifyParticipants(tournamentID, current, max int) {
	if rdbClient == nil {
		// Single-instance fallback: deliver directly to local clients
		LobbyHub.BroadcastToLobby(tournamentID, lobbyEvent{
			Type:                "participant_update",
			TournamentID:        tournamentID,
			CurrentParticipants: current,
			MaxParticipants:     max,
		})
		return
	}

	payload, err := json.Marshal(lobbyEvent{
		Type:                "participant_update",
		TournamentID:        tournamentID,
		CurrentParticipants: current,
		MaxParticipants:     max,
	})
	if err != nil {
		log.Printf("[WS] failed to marshal lobby event: %v", err)
		return
	}
	if err := rdbClient.Publish(context.Background(), lobbyChannel, payload).Err(); err != nil {
		log.Printf("[WS] failed to publish lobby event: %v", err)
	}
}
