package blog

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// Response is the JSON envelope every endpoint answers with
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewErrorHandler renders any handler error as a JSON envelope. Internal
// errors are logged and answered with a generic message.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = resolveLogger("blog.http", logger)

	return func(c *fiber.Ctx, err error) error {
		status, body := errorResponse(err)

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				"error", err,
				"method", c.Method(),
				"path", c.Path(),
				"request_id", c.Locals("requestid"),
			)
		} else {
			logger.Debug("request rejected",
				"status", status,
				"error", err.Error(),
				"path", c.Path(),
			)
		}

		return c.Status(status).JSON(body)
	}
}

func errorResponse(err error) (int, Response) {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		status := statusFromCategory(richErr.Category)
		if status >= fiber.StatusInternalServerError {
			return status, Response{Message: internalErrorMessage}
		}
		return status, Response{
			Message: richErr.Message,
			Errors:  metadataMessages(richErr.Metadata),
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code >= fiber.StatusInternalServerError {
			return fiberErr.Code, Response{Message: internalErrorMessage}
		}
		return fiberErr.Code, Response{Message: fiberErr.Message}
	}

	return fiber.StatusInternalServerError, Response{Message: internalErrorMessage}
}

func metadataMessages(metadata map[string]any) []string {
	if metadata == nil {
		return nil
	}
	messages, _ := metadata["errors"].([]string)
	return messages
}

// bindJSON parses the request body into out. Any parse failure is a 400.
func bindJSON(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return ErrInvalidPayload.Clone().WithMetadata(map[string]any{
			"errors": []string{err.Error()},
		})
	}
	return nil
}

func debugPayload(logger Logger, msg string, payload any) {
	logger.Debug(msg, "payload", print.MaybePrettyJSON(payload))
}
