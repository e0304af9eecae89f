package router

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/tinegaCollins/user-manager/internal/apperr"
)

type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ErrorHandler renders every handler error as ErrorBody. Causes of 5xx
// responses are logged and never sent to the client.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
				zap.Int("status", status),
				zap.Error(err),
			)
		}
		return c.Status(status).JSON(body)
	}
}

func classify(err error) (int, ErrorBody) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Kind.Status(), ErrorBody{Error: apperr.Public(err), Code: ae.Kind.Code()}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		msg := fe.Message
		if fe.Code >= fiber.StatusInternalServerError {
			msg = "internal server error"
		}
		return fe.Code, ErrorBody{Error: msg, Code: statusCode(fe.Code)}
	}

	return fiber.StatusInternalServerError, ErrorBody{Error: "internal server error", Code: apperr.KindInternal.Code()}
}

// statusCode names an HTTP status in the same style as apperr kinds.
func statusCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return apperr.KindValidation.Code()
	case fiber.StatusUnauthorized:
		return apperr.KindUnauthorized.Code()
	case fiber.StatusForbidden:
		return apperr.KindForbidden.Code()
	case fiber.StatusNotFound:
		return apperr.KindNotFound.Code()
	case fiber.StatusConflict:
		return apperr.KindConflict.Code()
	case fiber.StatusServiceUnavailable:
		return apperr.KindUnavailable.Code()
	}
	if status >= fiber.StatusInternalServerError {
		return apperr.KindInternal.Code()
	}
	return strings.ReplaceAll(strings.ToLower(utils.StatusMessage(status)), " ", "_")
}
