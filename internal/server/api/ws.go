// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // same-origin enforcement happens at the CORS layer
	},
}

const writeWait = 10 * time.Second

// snapshotMsg is the wire format pushed to every connected browser whenever
// either collection changes.
type snapshotMsg struct {
	Type     string           `json:"type"`
	RSVPs    []*model.RSVP    `json:"rsvps"`
	Bookings []*model.Booking `json:"bookings"`
}

// Live streams the combined rsvp/booking state over a WebSocket. Each client
// gets the current state right after connecting and a fresh snapshot after
// every mutation, its own included. Subscriptions are released when the
// browser goes away.
func (p *PartyHandler) Live(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		p.logger.ErrorContext(c.Request.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	rsvps, stopRSVPs := p.live.SubscribeRSVPs(ctx)
	defer stopRSVPs()
	bookings, stopBookings := p.live.SubscribeBookings(ctx)
	defer stopBookings()

	// Drain control frames so pongs and the close handshake are processed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var (
		currentRSVPs    map[uuid.UUID]*model.RSVP
		currentBookings map[uuid.UUID]*model.Booking
	)

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-rsvps:
			if !ok {
				return
			}
			currentRSVPs = snap
		case snap, ok := <-bookings:
			if !ok {
				return
			}
			currentBookings = snap
		}

		// Wait for both initial snapshots before pushing anything, a
		// half-empty first frame would flash an empty guest list.
		if currentRSVPs == nil || currentBookings == nil {
			continue
		}

		msg := snapshotMsg{Type: "snapshot"}
		for _, r := range currentRSVPs {
			msg.RSVPs = append(msg.RSVPs, r)
		}
		for _, b := range currentBookings {
			msg.Bookings = append(msg.Bookings, b)
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
