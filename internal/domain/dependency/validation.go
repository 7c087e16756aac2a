package dependency

import (
	"strings"

	"github.com/rpggio/plantree/internal/domain"
)

// validateEdge checks ids and, when set, the relation type.
func validateEdge(req EdgeRequest) error {
	if err := domain.ValidateStruct(req); err != nil {
		return err
	}
	if strings.TrimSpace(req.FromID) == strings.TrimSpace(req.ToID) {
		return ErrSelfEdge
	}
	if req.Type != "" && !req.Type.IsValid() {
		return ErrUnknownType
	}
	return nil
}
