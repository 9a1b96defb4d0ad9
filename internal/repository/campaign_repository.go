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

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, workspaceID string, offset, limit int, channel, status string) ([]*model.Campaign, int, error)
	UpdateStatus(ctx context.Context, campaignID string, status model.CampaignStatus) error
	CountByChannel(ctx context.Context, workspaceID string) (map[model.Channel]int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, workspace_id, name, channel, status, subject, body, created_at, updated_at`

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}
	query := `
        INSERT INTO campaigns (workspace_id, name, channel, status, subject, body, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	return r.DB.QueryRowContext(ctx, query,
		c.WorkspaceID, c.Name, c.Channel, c.Status, c.Subject, c.Body, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, campaignID string, status model.CampaignStatus) error {
	query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.ExecContext(ctx, query, status, time.Now(), campaignID)
	return err
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(ctx context.Context, workspaceID string, offset, limit int, channel, status string) ([]*model.Campaign, int, error) {
	where := ` WHERE workspace_id=$1`
	args := []interface{}{workspaceID}
	argPos := 2

	if channel != "" {
		where += fmt.Sprintf(" AND channel=$%d", argPos)
		args = append(args, channel)
		argPos++
	}
	if status != "" {
		where += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// CountByChannel returns the workspace's campaign count per channel. Channels
// without campaigns are absent from the map.
func (r *CampaignRepository) CountByChannel(ctx context.Context, workspaceID string) (map[model.Channel]int, error) {
	query := `SELECT channel, COUNT(*) FROM campaigns WHERE workspace_id=$1 GROUP BY channel`
	rows, err := r.DB.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.Channel]int{}
	for rows.Next() {
		var channel model.Channel
		var n int
		if err := rows.Scan(&channel, &n); err != nil {
			return nil, err
		}
		counts[channel] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.Channel, &c.Status,
		&c.Subject, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
