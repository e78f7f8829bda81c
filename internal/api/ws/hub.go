package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/plano/internal/domain"
	redisstore "github.com/gosuda/plano/internal/store/redis"
)

// Subscriber is the part of redisstore.Bus the hub needs.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub manages WebSocket connections backed by Redis pub/sub.
type Hub struct {
	pubsub Subscriber
}

// NewHub creates a new WebSocket hub.
func NewHub(pubsub Subscriber) *Hub {
	return &Hub{pubsub: pubsub}
}

// ServeStatus streams status_changed events to dashboards. With no query
// parameters it relays every change; ?kind= narrows to one entity kind and
// ?kind=&id= to a single entity.
func (h *Hub) ServeStatus(w http.ResponseWriter, r *http.Request) {
	channel, err := statusChannel(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Dashboards never send; CloseRead handles pings and cancels ctx when
	// the client goes away.
	ctx := conn.CloseRead(r.Context())

	messages, cleanup, err := h.pubsub.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}

func statusChannel(r *http.Request) (string, error) {
	q := r.URL.Query()
	rawKind, rawID := q.Get("kind"), q.Get("id")

	if rawKind == "" {
		if rawID != "" {
			return "", errors.New("id requires kind")
		}
		return redisstore.StatusChannel(), nil
	}

	kind, err := domain.ParseKind(rawKind)
	if err != nil {
		return "", err
	}
	if rawID == "" {
		return redisstore.KindChannel(kind), nil
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return "", fmt.Errorf("invalid id: %w", err)
	}
	return redisstore.EntityChannel(kind, id), nil
}
