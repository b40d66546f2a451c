package dto

import "github.com/jhoicas/stock-manager-api/internal/domain/entity"

// ToProductResponse convierte la entidad a su representación HTTP.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Quantity:        p.Quantity,
		InitialQuantity: p.InitialQuantity,
		MinStock:        p.MinStock,
		CategoryID:      p.CategoryID,
		ImageURL:        p.ImageURL,
		IsLowStock:      p.IsLowStock(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToProductList convierte una lista; nunca devuelve nil.
func ToProductList(list []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToProductResponse(p))
	}
	return out
}

// ToMovementResponse convierte un movimiento.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      string(m.Type),
		Quantity:  m.Quantity,
		Reason:    m.Reason,
		UserID:    m.UserID,
		Timestamp: m.Timestamp,
	}
}

// ToMovementList convierte una lista; nunca devuelve nil.
func ToMovementList(list []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

// ToUserResponse convierte un usuario (sin hash).
func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

// ToCategoryResponse convierte una categoría.
func ToCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}

// ToNotificationResponse convierte una notificación.
func ToNotificationResponse(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID: n.ID, Title: n.Title, Message: n.Message, Type: n.Type,
		Priority: n.Priority, IsRead: n.IsRead, CreatedAt: n.CreatedAt,
	}
}

// ToSettingResponse convierte un ajuste.
func ToSettingResponse(s *entity.SystemSetting) SettingResponse {
	return SettingResponse{Key: s.Key, Value: s.Value, Description: s.Description, UpdatedAt: s.UpdatedAt}
}
