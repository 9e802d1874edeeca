package request

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/seabattle/internal/model"
)

// MaxWinnersLimit caps the limit query parameter
const MaxWinnersLimit = 100

// WinnersQuery holds the query parameters of GET /winners
type WinnersQuery struct {
	// Limit is zero when every row is wanted
	Limit int
}

// ParseWinnersQuery reads ?limit=N
func ParseWinnersQuery(r *http.Request) (WinnersQuery, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return WinnersQuery{}, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > MaxWinnersLimit {
		return WinnersQuery{}, fmt.Errorf("limit must be between 1 and %d", MaxWinnersLimit)
	}
	return WinnersQuery{Limit: limit}, nil
}

// RoomID reads the {id} path variable
func RoomID(r *http.Request) (model.RoomID, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		return 0, errors.New("room id must be a positive integer")
	}
	return model.RoomID(id), nil
}
