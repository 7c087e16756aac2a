package sqlite

import (
	"fmt"
	"strings"

	"github.com/rpggio/plantree/internal/repository"
)

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

// writeError maps constraint failures onto repository sentinels.
func writeError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("failed to %s: %w", op, repository.ErrDuplicate)
	case isForeignKeyViolation(err):
		return fmt.Errorf("failed to %s: %w", op, repository.ErrForeignKeyViolation)
	case isCheckViolation(err):
		return fmt.Errorf("failed to %s: %w", op, repository.ErrInvalidInput)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
