package service

import (
	"context"

	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
	"github.com/unclebandit/campaign-broadcaster/internal/repository"
)

// RecipientResolver lists the contacts of a workspace that can be reached
// on a channel, in stable storage order.
type RecipientResolver struct {
	ContactRepo repository.ContactRepositoryInterface
}

func (r *RecipientResolver) Resolve(ctx context.Context, workspaceID string, channel model.Channel) ([]model.Contact, error) {
	contacts, err := r.ContactRepo.ListByWorkspaceAndChannel(ctx, workspaceID, channel)
	if err != nil {
		return nil, &appErrors.ResolutionError{Err: err}
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	return contacts, nil
}
