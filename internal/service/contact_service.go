package service

import (
	"context"
	"strings"

	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
	"github.com/unclebandit/campaign-broadcaster/internal/repository"
)

type ContactService struct {
	ContactRepo repository.ContactRepositoryInterface
}

type CreateContactInput struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
}

func (s *ContactService) CreateContact(ctx context.Context, caller model.Caller, in CreateContactInput) (*model.Contact, error) {
	if caller.WorkspaceID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	c := &model.Contact{
		WorkspaceID: caller.WorkspaceID,
		Email:       optional(strings.TrimSpace(in.Email)),
		Phone:       optional(strings.TrimSpace(in.Phone)),
		FirstName:   optional(strings.TrimSpace(in.FirstName)),
		LastName:    optional(strings.TrimSpace(in.LastName)),
	}
	if err := s.ContactRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) ListContacts(ctx context.Context, caller model.Caller) ([]model.Contact, error) {
	if caller.WorkspaceID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	contacts, err := s.ContactRepo.ListByWorkspace(ctx, caller.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	return contacts, nil
}
