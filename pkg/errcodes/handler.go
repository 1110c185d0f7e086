package errcodes

import (
	"fmt"
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

const genericServerMessage = "Something went wrong"

type Handler struct {
	exposeErrors bool
}

// NewHandler returns a Handler. When exposeErrors is false, unexpected errors
// are reported to clients with a generic message.
func NewHandler(exposeErrors bool) *Handler {
	return &Handler{exposeErrors}
}

// Handle is an Echo error handler that uses HTTP errors accordingly, and any
// generic error will be interpreted as an internal server error.
func (h *Handler) Handle(err error, c echo.Context) {
	if errutils.IsIgnorableErr(err) {
		logger.FromEchoContext(c).Err(err).Warn("broken pipe")
		return
	}

	httpCode, payload := h.generatePayload(err)

	// Internal server errors
	if httpCode == http.StatusInternalServerError {
		logger.FromEchoContext(c).Err(err).Error("server error")
	}

	if c.Response().Committed {
		return
	}

	if err := c.JSON(httpCode, payload); err != nil {
		logger.FromEchoContext(c).Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func (h *Handler) generatePayload(err error) (int, map[string]interface{}) {
	category := ""
	code := ""
	msg := ""
	var details []FieldError
	httpCode := http.StatusInternalServerError

	// Echo errors
	var he *echo.HTTPError
	if ok := errors.As(err, &he); ok {
		httpCode = he.Code
		category = http.StatusText(he.Code)
		msg = fmt.Sprint(he.Message)
		code = strcase.ToSnake(msg)
	}

	// Custom errors
	var e *Error
	if ok := errors.As(err, &e); ok {
		httpCode = e.HTTPCode
		category = e.Category
		code = e.Code
		msg = e.Message
		details = e.Details
	}

	// Internal server errors that aren't Echo errors or custom errors
	if httpCode == http.StatusInternalServerError && code == "" {
		category = CategoryServer
		code = "internal_server_error"
		msg = genericServerMessage
		if h.exposeErrors && err != nil {
			msg = err.Error()
		}
	}

	payload := map[string]interface{}{
		"success": false,
		"error":   category,
		"code":    code,
		"message": msg,
	}
	if len(details) > 0 {
		payload["details"] = details
	}
	return httpCode, payload
}
