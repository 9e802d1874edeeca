package handler

import (
	"net/http"

	"github.com/mcoot/seabattle/internal/api/apierr"
	"github.com/mcoot/seabattle/internal/api/request"
	"github.com/mcoot/seabattle/internal/api/response"
	"github.com/mcoot/seabattle/internal/services/room"
)

// RoomHandler serves the room read model
type RoomHandler struct {
	registry *room.Registry
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(registry *room.Registry) *RoomHandler {
	return &RoomHandler{registry: registry}
}

// List handles GET /api/v1/rooms, the same rooms update_room lists
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.RoomsFromModel(h.registry.AvailableRooms()))
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID, err := request.RoomID(r)
	if err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	summary, err := h.registry.Summary(roomID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(summary))
}
