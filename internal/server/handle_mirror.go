package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/playperu/guessactor/internal/events"
	"github.com/playperu/guessactor/internal/game"
)

// MirrorMessage is the first message on the mirror socket.
type MirrorMessage struct {
	Type    string           `json:"type"`
	Profile game.ProfileView `json:"profile"`
}

// handleMirror streams the player's events over a WebSocket so that every
// open view of the same player sees coin and progress changes.
func handleMirror(hub *events.Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ch := hub.Subscribe(sess.PlayerID())
		defer hub.Unsubscribe(sess.PlayerID(), ch)

		// The client never sends; CloseRead ends ctx when the peer goes away.
		ctx := conn.CloseRead(r.Context())

		hello, _ := json.Marshal(MirrorMessage{Type: "profile", Profile: sess.View()})
		if err := write(ctx, conn, hello); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case data := <-ch:
				if err := write(ctx, conn, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
