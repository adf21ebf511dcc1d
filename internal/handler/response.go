package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Issue API responses are always HTTP 200; the body tells success from
// failure.
const (
	msgProjectNotFound = "Project not found"
	msgFetchFailed     = "Error fetching issues"
	msgRequiredMissing = "required field(s) missing"
	msgSaveFailed      = "error saving the post"
	msgMissingID       = "missing _id"
	msgNoUpdateFields  = "no update field(s) sent"
	msgUpdateFailed    = "could not update"
	msgDeleteFailed    = "could not delete"

	resultUpdated = "successfully updated"
	resultDeleted = "successfully deleted"
)

// ErrorBody is the failure response of the issue API.
type ErrorBody struct {
	Error string `json:"error"`
	ID    string `json:"_id,omitempty"`
}

// ResultBody is the success response of update and delete.
type ResultBody struct {
	Result string `json:"result"`
	ID     string `json:"_id"`
}

// JSON writes data with HTTP 200.
func JSON(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// Fail writes an error body with HTTP 200. id is omitted when empty.
func Fail(c echo.Context, message, id string) error {
	return c.JSON(http.StatusOK, ErrorBody{Error: message, ID: id})
}

// Result writes a result body with HTTP 200.
func Result(c echo.Context, result, id string) error {
	return c.JSON(http.StatusOK, ResultBody{Result: result, ID: id})
}

// HTTPErrorHandler is the global error handler for echo. It only sees
// framework errors (unknown route, wrong method, panics); those keep their
// status code.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := mapError(err)
	if jsonErr := c.JSON(status, ErrorBody{Error: message}); jsonErr != nil {
		slog.Error("failed to send error response", "error", jsonErr)
	}
}

func mapError(err error) (int, string) {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return echoErr.Code, msg
	}

	slog.Error("unhandled error", "error", err)
	return http.StatusInternalServerError, "An unexpected error occurred"
}
