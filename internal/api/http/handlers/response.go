package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/service"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(envelope{Success: true, Message: message, Data: data})
}

func pageResponse[T, R any](page service.Page[T], mapItems func([]T) []R) dto.PageResponse[R] {
	return dto.PageResponse[R]{
		Items: mapItems(page.Items),
		Page:  page.Page,
		Limit: page.Limit,
		Total: page.Total,
		Pages: page.Pages(),
	}
}
