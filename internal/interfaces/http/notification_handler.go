package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/application/usecase"
)

// NotificationHandler notificaciones del usuario autenticado y ajustes del sistema.
type NotificationHandler struct {
	notifications *usecase.NotificationUseCase
	settings      *usecase.SettingUseCase
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(notifications *usecase.NotificationUseCase, settings *usecase.SettingUseCase) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, settings: settings}
}

// List godoc
// @Summary      Notificaciones del usuario
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        unread_only  query  bool  false  "Solo no leídas"
// @Param        limit        query  int   false  "Límite"  default(100)
// @Param        offset       query  int   false  "Offset"  default(0)
// @Success      200  {array}  dto.NotificationResponse
// @Router       /notifications/ [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	var q dto.NotificationListQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.notifications.List(c.UserContext(), GetUserID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MarkRead godoc
// @Summary      Marcar notificación como leída
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la notificación"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.notifications.MarkRead(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "notificación leída"})
}

// ListSettings godoc
// @Summary      Ajustes del sistema
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SettingResponse
// @Router       /settings/ [get]
func (h *NotificationHandler) ListSettings(c *fiber.Ctx) error {
	out, err := h.settings.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateSetting godoc
// @Summary      Crear o actualizar un ajuste
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        key   path  string                    true  "Clave"
// @Param        body  body  dto.UpdateSettingRequest  true  "Valor y descripción"
// @Success      200   {object}  dto.SettingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /settings/{key} [put]
func (h *NotificationHandler) UpdateSetting(c *fiber.Ctx) error {
	var in dto.UpdateSettingRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.settings.Update(c.UserContext(), GetUserID(c), c.Params("key"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
