package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-engine/internal/view"
)

const writeTimeout = 5 * time.Second

const (
	actionConnect   = "connect"
	actionGameState = "game:state"
	actionGameTurn  = "game:turn"
	actionGameReset = "game:reset"
	actionGameLeave = "game:leave"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	Token string `json:"token,omitempty"`
	Cell  *int   `json:"cell,omitempty"`
}

type ResponsePayload struct {
	Token string     `json:"token,omitempty"`
	Game  *view.Game `json:"game,omitempty"`
	Error string     `json:"error,omitempty"`
}

type response struct {
	Action  string          `json:"action"`
	Payload ResponsePayload `json:"payload"`
}

// decodePayload - an absent payload decodes to the zero value.
func decodePayload(msg *Message) (RequestPayload, error) {
	var payload RequestPayload
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

func (that *Server) sendMessage(ctx context.Context, client *peer, action string, payload ResponsePayload) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := wsjson.Write(ctx, client.conn, response{Action: action, Payload: payload}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(ctx context.Context, client *peer, action, errorMsg string) error {
	if err := that.sendMessage(ctx, client, action, ResponsePayload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
