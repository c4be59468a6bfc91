package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kindredapp/kindred/store"
)

func userIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return int32(id), nil
}

func (s *APIV1Service) getMemoryProfile(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}

	row, err := s.Store.GetMemoryProfile(c.Request().Context(), &store.FindMemoryProfile{UserID: &userID})
	if err != nil {
		slog.Error("failed to get memory profile", "userId", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get memory profile")
	}
	if row == nil {
		return echo.NewHTTPError(http.StatusNotFound, "memory profile not found")
	}

	payload, err := store.UnmarshalMemoryProfilePayload(row.Payload)
	if err != nil {
		slog.Error("failed to parse memory profile payload", "userId", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to parse memory profile")
	}
	return c.JSON(http.StatusOK, payload)
}

// refreshMemoryProfile recomputes one user's profile on demand.
func (s *APIV1Service) refreshMemoryProfile(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}

	payload, err := s.Aggregator.AggregateUser(c.Request().Context(), userID)
	if err != nil {
		slog.Error("failed to refresh memory profile", "userId", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to refresh memory profile")
	}
	return c.JSON(http.StatusOK, payload)
}

type createCompanionEventRequest struct {
	EventType string `json:"eventType"`
	Payload   string `json:"payload,omitempty"`
}

func (s *APIV1Service) createCompanionEvent(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}

	request := createCompanionEventRequest{}
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	event, err := s.Store.CreateCompanionEvent(c.Request().Context(), &store.CompanionEvent{
		CreatorID: userID,
		EventType: store.ParseCompanionEventType(request.EventType),
		Payload:   request.Payload,
	})
	if err != nil {
		slog.Error("failed to create companion event", "userId", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create companion event")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":        event.ID,
		"eventType": event.EventType.String(),
	})
}

type upsertCompanionStateRequest struct {
	Joy       int `json:"joy"`
	Stress    int `json:"stress"`
	Fatigue   int `json:"fatigue"`
	Affection int `json:"affection"`
}

func clampLevel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (s *APIV1Service) upsertCompanionState(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}

	request := upsertCompanionStateRequest{}
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	state, err := s.Store.UpsertCompanionState(c.Request().Context(), &store.UpsertCompanionState{
		UserID:    userID,
		Joy:       clampLevel(request.Joy),
		Stress:    clampLevel(request.Stress),
		Fatigue:   clampLevel(request.Fatigue),
		Affection: clampLevel(request.Affection),
	})
	if err != nil {
		slog.Error("failed to upsert companion state", "userId", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to upsert companion state")
	}
	return c.JSON(http.StatusOK, state.EmotionalState())
}
