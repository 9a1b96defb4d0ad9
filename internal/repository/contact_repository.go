package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
)

// ContactRepositoryInterface defines methods used by service
type ContactRepositoryInterface interface {
	Create(ctx context.Context, c *model.Contact) error
	GetByID(ctx context.Context, id string) (*model.Contact, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]model.Contact, error)
	ListByWorkspaceAndChannel(ctx context.Context, workspaceID string, channel model.Channel) ([]model.Contact, error)
	CountByWorkspace(ctx context.Context, workspaceID string) (int, error)
}

// ContactRepository is the concrete implementation
type ContactRepository struct {
	DB *sql.DB
}

const contactColumns = `id, workspace_id, email, phone, first_name, last_name, created_at, updated_at`

func (r *ContactRepository) Create(ctx context.Context, c *model.Contact) error {
	c.CreatedAt = time.Now()
	query := `
        INSERT INTO contacts (workspace_id, email, phone, first_name, last_name, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	return r.DB.QueryRowContext(ctx, query,
		c.WorkspaceID, c.Email, c.Phone, c.FirstName, c.LastName, c.CreatedAt,
	).Scan(&c.ID)
}

// GetByID fetches a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`
	c, err := scanContact(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrContactNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListByWorkspace returns every contact of the workspace, newest first.
func (r *ContactRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE workspace_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, workspaceID)
}

// ListByWorkspaceAndChannel returns the contacts that have an address for the
// channel, in a stable order.
func (r *ContactRepository) ListByWorkspaceAndChannel(ctx context.Context, workspaceID string, channel model.Channel) ([]model.Contact, error) {
	var column string
	switch channel {
	case model.ChannelEmail:
		column = "email"
	case model.ChannelWhatsApp:
		column = "phone"
	default:
		return nil, fmt.Errorf("unsupported channel: %s", channel)
	}
	query := `SELECT ` + contactColumns + ` FROM contacts
        WHERE workspace_id = $1 AND ` + column + ` IS NOT NULL
        ORDER BY created_at, id`
	return r.list(ctx, query, workspaceID)
}

func (r *ContactRepository) CountByWorkspace(ctx context.Context, workspaceID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE workspace_id = $1`, workspaceID).Scan(&n)
	return n, err
}

func (r *ContactRepository) list(ctx context.Context, query string, args ...any) ([]model.Contact, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

func scanContact(row rowScanner) (*model.Contact, error) {
	var c model.Contact
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.Email, &c.Phone, &c.FirstName, &c.LastName, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
