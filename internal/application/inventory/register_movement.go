package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RecordMovement.
// El tipo se acepta en mayúsculas o minúsculas.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, actorID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	t, ok := entity.ParseMovementType(in.Type)
	if !ok {
		return nil, fmt.Errorf("tipo de movimiento %q: %w", in.Type, domain.ErrInvalidInput)
	}
	mov, err := uc.RecordMovement(ctx, MovementInput{
		ProductID: in.ProductID,
		Type:      t,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		ActorID:   actorID,
	})
	if err != nil {
		return nil, err
	}
	out := dto.ToMovementResponse(mov)
	return &out, nil
}
