package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

var badRequestErrors = []error{
	domain.ErrHabitNameEmpty,
	domain.ErrHabitNameTooLong,
	domain.ErrHabitDescTooLong,
	domain.ErrInvalidTarget,
	domain.ErrStartDateRequired,
	domain.ErrInvalidGoalType,
	domain.ErrInvalidDate,
	domain.ErrInvalidLog,
	domain.ErrNegativeValue,
	domain.ErrLogDateMissing,
	domain.ErrInvalidRange,
	domain.ErrRangeTooLarge,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrUsernameEmpty,
	domain.ErrInvalidTimezone,
}

// statusFor maps domain sentinels to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}

	switch {
	case errors.Is(err, domain.ErrHabitNotFound),
		errors.Is(err, domain.ErrLogNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLogExists),
		errors.Is(err, domain.ErrEmailAlreadyExists),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrHabitArchived):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func handleError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

// requireUser reads the authenticated user id. It writes the response itself when missing.
func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return "", false
	}
	return userID, true
}

// optionalDateQuery parses ?key=YYYY-MM-DD. An absent key yields nil.
func optionalDateQuery(c *gin.Context, key string) (*domain.Date, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
