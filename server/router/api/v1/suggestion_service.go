package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kindredapp/kindred/server/selector"
)

type createSuggestionRequest struct {
	UserID        int32                  `json:"userId"`
	CompanionMood string                 `json:"companionMood"`
	Location      *selector.LocationHint `json:"location,omitempty"`
}

// createSuggestion runs the contextual selector for one user. Collaborator
// degradation happens inside the selector; only unexpected failures surface
// as an error response, scoped to this request.
func (s *APIV1Service) createSuggestion(c echo.Context) error {
	request := createSuggestionRequest{}
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if request.UserID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}

	suggestion, err := s.Selector.Suggest(c.Request().Context(), selector.SuggestRequest{
		UserID:        request.UserID,
		CompanionMood: selector.ParseCompanionMood(request.CompanionMood),
		Location:      request.Location,
	})
	if err != nil {
		slog.Error("suggestion request failed", "userId", request.UserID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build suggestion")
	}

	return c.JSON(http.StatusOK, suggestion)
}
