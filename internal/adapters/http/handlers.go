package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/adapters/signal"
	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

type Handlers struct {
	orch *orch.Orchestrator
}

func NewHandlers(o *orch.Orchestrator) *Handlers {
	return &Handlers{orch: o}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type RoomsResponse struct {
	Rooms []core.RoomInfo `json:"rooms"`
}

type ProfileRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
}

type ProfileResponse struct {
	DisplayName string `json:"displayName"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Rooms    int    `json:"rooms"`
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Sessions: h.orch.Registry.Count(),
		Rooms:    h.orch.Rooms.Count(),
	})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, RoomsResponse{Rooms: h.orch.Rooms.List()})
}

func (h *Handlers) GetRoom(c *gin.Context) {
	code, err := domain.ParseRoomCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	detail, ok := h.orch.Rooms.Get(code)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handlers) ICEServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": h.orch.ICEServers})
}

func (h *Handlers) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, ProfileResponse{DisplayName: signal.RememberedName(c)})
}

// PutProfile remembers a display name for the browser; sockets opened later
// start with it.
func (h *Handlers) PutProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "displayName is required"})
		return
	}
	name, err := domain.NormalizeDisplayName(req.DisplayName)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := signal.RememberName(c, name); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "could not save profile"})
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{DisplayName: name})
}
