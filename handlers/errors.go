package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/quesurifn/git-calendar-server/page"
	"github.com/quesurifn/git-calendar-server/types"
	"go.uber.org/zap"
)

const noMessage = "NO ERROR MESSAGE PROVIDED!"

// AppError is an error meant for the client. Cause is only logged.
type AppError struct {
	Cause   string
	Message string
	Status  int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s (%s)", e.Status, e.Message, e.Cause)
}

func badRequest(message, cause string) *AppError {
	return &AppError{Cause: cause, Message: message, Status: fiber.StatusBadRequest}
}

// ErrorHandler answers /api routes with {"error": ...} and everything else
// with an HTML page.
func (h *Handlers) ErrorHandler(c *fiber.Ctx, err error) error {
	appErr := &AppError{Cause: err.Error(), Message: noMessage, Status: fiber.StatusInternalServerError}

	var ae *AppError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ae):
		appErr = ae
	case errors.As(err, &fe):
		appErr = &AppError{Cause: fe.Message, Message: fe.Message, Status: fe.Code}
	}
	if appErr.Message == "" {
		appErr.Message = noMessage
	}

	h.logger().Error("ErrorHandler",
		zap.String("path", c.Path()),
		zap.Int("status", appErr.Status),
		zap.String("cause", appErr.Cause),
	)

	if appErr.Status == fiber.StatusNotFound && !isAPI(c) {
		return h.NotFoundHandler(c)
	}

	c.Status(appErr.Status)
	if isAPI(c) {
		return c.JSON(types.ErrorResponse{Error: appErr.Message})
	}

	doc, err := page.Layout(page.LayoutData{
		AppName: h.AppName,
		Scheme:  h.Scheme,
		Heading: page.Link{Text: appErr.Message},
		Path:    "/",
	})
	if err != nil {
		return c.SendString(appErr.Message)
	}
	if status := doc.ByClass("bottom-message"); status != nil {
		status.SetText(appErr.Message)
	}
	c.Type("html")
	return doc.Render(c)
}

// NotFoundHandler serves the 404 page.
func (h *Handlers) NotFoundHandler(c *fiber.Ctx) error {
	if isAPI(c) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrorResponse{Error: "Not Found"})
	}

	doc, err := page.NotFound(h.AppName, h.Scheme)
	if err != nil {
		return err
	}
	h.applyTheme(c, doc)

	c.Status(fiber.StatusNotFound).Type("html")
	return doc.Render(c)
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}
