package residentRepo

import (
	"context"
	"errors"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

var ErrResidentNotFound = errors.New("resident not found")

// ResidentRepository reads the resident profile fields the booking core needs
// for notifications.
type ResidentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Resident, error)
}
