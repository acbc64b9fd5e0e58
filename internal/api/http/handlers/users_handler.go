package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/service"
)

// UsersHandler exposes profile and user administration endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Profile handles GET /api/users/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	fresh, err := h.users.Get(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", fiber.Map{"user": dto.NewUserResponse(fresh)})
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	update := service.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
	}
	if req.Address != nil {
		addr := req.Address.ToDomain()
		update.Address = &addr
	}
	updated, err := h.users.UpdateProfile(c.UserContext(), user.ID, update)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "profile updated", fiber.Map{"user": dto.NewUserResponse(updated)})
}

// List handles GET /api/users (admin).
func (h *UsersHandler) List(c *fiber.Ctx) error {
	var query dto.PageQuery
	if err := bindQuery(c, &query); err != nil {
		return err
	}
	page, err := h.users.List(c.UserContext(), query.Page, query.Limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", pageResponse(page, dto.NewUserResponses))
}

// Get handles GET /api/users/:id (admin).
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", fiber.Map{"user": dto.NewUserResponse(user)})
}

// Deactivate handles DELETE /api/users/:id (admin). The account is kept but can
// no longer authenticate.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	if err := h.users.Deactivate(c.UserContext(), actor.ID, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user deactivated", nil)
}
