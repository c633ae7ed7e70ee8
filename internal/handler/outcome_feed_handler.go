package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/twistedwarden/esmv2-sub001/internal/service"
)

// OutcomeFeedHandler streams scheduling outcome events over a websocket so
// coordinator dashboards can react live.
type OutcomeFeedHandler struct {
	outcomes service.OutcomeService
	logger   zerolog.Logger
}

// NewOutcomeFeedHandler constructs the live outcome feed handler.
func NewOutcomeFeedHandler(outcomes service.OutcomeService, logger zerolog.Logger) *OutcomeFeedHandler {
	return &OutcomeFeedHandler{
		outcomes: outcomes,
		logger:   logger.With().Str("component", "outcome_feed_handler").Logger(),
	}
}

// Register wires the websocket upgrade route.
func (h *OutcomeFeedHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *OutcomeFeedHandler) handleConnection(conn *websocket.Conn) {
	events, cancel := h.outcomes.Subscribe()
	defer cancel()
	defer conn.Close()

	h.logger.Info().Msg("outcome feed connected")

	// Drain and discard client frames so close messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			h.logger.Info().Msg("outcome feed disconnected")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error().Err(err).Msg("failed to encode outcome event")
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.Info().Msg("outcome feed disconnected")
				return
			}
		}
	}
}
