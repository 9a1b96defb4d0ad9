package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/unclebandit/campaign-broadcaster/internal/model"
)

type MessageLogRepositoryInterface interface {
	Create(ctx context.Context, l *model.MessageLog) error
	StatsByCampaign(ctx context.Context, campaignID string) (map[string]int, error)
	DailySentCounts(ctx context.Context, workspaceID string, since time.Time) ([]DailyCount, error)
}

// DailyCount is one (day, channel) bucket of sent messages.
type DailyCount struct {
	Day     string
	Channel model.Channel
	Count   int
}

type MessageLogRepository struct {
	DB *sql.DB
}

// Create inserts a message log row. A missing ID or timestamp is filled in.
func (r *MessageLogRepository) Create(ctx context.Context, l *model.MessageLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO message_logs
        (id, workspace_id, user_id, channel, provider, status, campaign_id, contact_id, provider_message_id, error_message, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (id) DO NOTHING
    `
	_, err := r.DB.ExecContext(ctx, query,
		l.ID,
		l.WorkspaceID,
		l.UserID,
		l.Channel,
		l.Provider,
		l.Status,
		l.CampaignID,
		l.ContactID,
		l.ProviderMessageID,
		l.ErrorMessage,
		l.CreatedAt,
	)
	return err
}

var trackedStatuses = []string{string(model.MessageStatusSent), string(model.MessageStatusFailed)}

// StatsByCampaign counts log rows per status for a campaign.
func (r *MessageLogRepository) StatsByCampaign(ctx context.Context, campaignID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM message_logs WHERE campaign_id=$1 AND status = ANY($2) GROUP BY status`
	rows, err := r.DB.QueryContext(ctx, query, campaignID, pq.Array(trackedStatuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"total": 0, "sent": 0, "failed": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
		stats["total"] += count
	}
	return stats, rows.Err()
}

// DailySentCounts groups sent messages since the given time by UTC day and channel.
func (r *MessageLogRepository) DailySentCounts(ctx context.Context, workspaceID string, since time.Time) ([]DailyCount, error) {
	query := `
        SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, channel, COUNT(*)
        FROM message_logs
        WHERE workspace_id = $1 AND status = 'sent' AND created_at >= $2
        GROUP BY day, channel
        ORDER BY day
    `
	rows, err := r.DB.QueryContext(ctx, query, workspaceID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DailyCount{}
	for rows.Next() {
		var d DailyCount
		if err := rows.Scan(&d.Day, &d.Channel, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

var _ MessageLogRepositoryInterface = (*MessageLogRepository)(nil)
