package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// RoomQuerier is the read-only view of signaling state.
type RoomQuerier interface {
	Participants(ctx context.Context, room domain.RoomID) ([]core.Participant, error)
	RoomList(ctx context.Context) ([]core.RoomInfo, error)
}

type Handlers struct {
	Rooms      RoomQuerier
	ICEServers []webrtc.ICEServer
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ParticipantsResponse struct {
	Participants []core.Participant `json:"participants"`
}

type RoomsResponse struct {
	Rooms []core.RoomInfo `json:"rooms"`
}

type ICEResponse struct {
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "OK",
		Message: "Video calling server is running",
	})
}

func (h *Handlers) Participants(c *gin.Context) {
	room, ok := domain.NewRoomID(c.Param("roomId"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing room id"})
		return
	}
	ps, err := h.Rooms.Participants(c.Request.Context(), room)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(room)).Msg("participants")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable"})
		return
	}
	if ps == nil {
		ps = []core.Participant{}
	}
	c.JSON(http.StatusOK, ParticipantsResponse{Participants: ps})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	rooms, err := h.Rooms.RoomList(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("rooms")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable"})
		return
	}
	if rooms == nil {
		rooms = []core.RoomInfo{}
	}
	c.JSON(http.StatusOK, RoomsResponse{Rooms: rooms})
}

func (h *Handlers) ICE(c *gin.Context) {
	servers := h.ICEServers
	if servers == nil {
		servers = []webrtc.ICEServer{}
	}
	c.JSON(http.StatusOK, ICEResponse{ICEServers: servers})
}
