// internal/repository/campaign_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
)

const TopLinksLimit = 10

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	Create(ctx context.Context, c *model.Campaign) error
	Update(ctx context.Context, c *model.Campaign) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	List(ctx context.Context, q ListQuery) ([]*model.Campaign, int, error)

	// Lifecycle
	UpdateStatus(ctx context.Context, id, status string) error
	Schedule(ctx context.Context, id string, at time.Time) error
	MarkSent(ctx context.Context, id string, totalSent int, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string) error
	ListDue(ctx context.Context, now time.Time) ([]*model.Campaign, error)
	LastSent(ctx context.Context) (*model.Campaign, error)

	// Analytics
	RecordOpen(ctx context.Context, subscriberID, campaignID string) (bool, error)
	RecordClick(ctx context.Context, subscriberID, campaignID, url string) error
	IncrementUnsubscribes(ctx context.Context, campaignID string) error
	TopLinks(ctx context.Context, campaignID string, limit int) ([]model.LinkStat, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, subject, preview_text, from_name, content, status, scheduled_date, sent_date,
	total_sent, total_opens, total_clicks, unsubscribes, created_at, updated_at`

func scanCampaign(s scanner) (*model.Campaign, error) {
	var c model.Campaign
	err := s.Scan(&c.ID, &c.Subject, &c.PreviewText, &c.FromName, &c.Content, &c.Status, &c.ScheduledDate, &c.SentDate,
		&c.TotalSent, &c.TotalOpens, &c.TotalClicks, &c.Unsubscribes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) queryCampaigns(ctx context.Context, query string, args ...any) ([]*model.Campaign, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query campaigns")
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan campaign")
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, errors.Wrap(rows.Err(), "iterate campaigns")
}

// checkAffected turns a zero-row write into a not-found error.
func checkAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return appErrors.NewNotFound("Campaign", id)
	}
	return nil
}

func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.NewNotFound("Campaign", id)
	}
	return nil
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	c.ID = uuid.NewString()
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	if c.FromName == "" {
		c.FromName = model.DefaultFromName
	}
	query := `
		INSERT INTO newsletter_campaigns (id, subject, preview_text, from_name, content, status, scheduled_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query, c.ID, c.Subject, c.PreviewText, c.FromName, c.Content, c.Status, c.ScheduledDate).
		Scan(&c.CreatedAt)
	return errors.Wrap(err, "insert campaign")
}

func (r *CampaignRepository) Update(ctx context.Context, c *model.Campaign) error {
	if err := validID(c.ID); err != nil {
		return err
	}
	query := `
		UPDATE newsletter_campaigns
		SET subject=$1, preview_text=$2, from_name=$3, content=$4, status=$5, scheduled_date=$6, updated_at=NOW()
		WHERE id=$7
		RETURNING updated_at
	`
	err := r.DB.QueryRowContext(ctx, query, c.Subject, c.PreviewText, c.FromName, c.Content, c.Status, c.ScheduledDate, c.ID).
		Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.NewNotFound("Campaign", c.ID)
	}
	return errors.Wrap(err, "update campaign")
}

func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM newsletter_campaigns WHERE id=$1`, id)
	if err != nil {
		return errors.Wrap(err, "delete campaign")
	}
	return checkAffected(res, id)
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	query := `SELECT ` + campaignColumns + ` FROM newsletter_campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("Campaign", id)
		}
		return nil, errors.Wrap(err, "get campaign")
	}
	return c, nil
}

func (r *CampaignRepository) List(ctx context.Context, q ListQuery) ([]*model.Campaign, int, error) {
	w := &where{}
	if q.Status != "" {
		w.add(" AND status=$%d", q.Status)
	}

	limit, args := w.page(q)
	query := fmt.Sprintf("SELECT %s FROM newsletter_campaigns %s ORDER BY created_at DESC", campaignColumns, w) + limit
	campaigns, err := r.queryCampaigns(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	// Count total
	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM newsletter_campaigns %s", w)
	if err := r.DB.QueryRowContext(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count campaigns")
	}
	return campaigns, total, nil
}

// ====================== Lifecycle ======================

func (r *CampaignRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if err := validID(id); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE newsletter_campaigns SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return errors.Wrap(err, "update campaign status")
	}
	return checkAffected(res, id)
}

func (r *CampaignRepository) Schedule(ctx context.Context, id string, at time.Time) error {
	if err := validID(id); err != nil {
		return err
	}
	query := `UPDATE newsletter_campaigns SET status=$1, scheduled_date=$2, updated_at=NOW() WHERE id=$3`
	res, err := r.DB.ExecContext(ctx, query, model.CampaignScheduled, at, id)
	if err != nil {
		return errors.Wrap(err, "schedule campaign")
	}
	return checkAffected(res, id)
}

func (r *CampaignRepository) MarkSent(ctx context.Context, id string, totalSent int, sentAt time.Time) error {
	query := `
		UPDATE newsletter_campaigns
		SET status=$1, sent_date=$2, total_sent=$3, updated_at=NOW()
		WHERE id=$4
	`
	res, err := r.DB.ExecContext(ctx, query, model.CampaignSent, sentAt, totalSent, id)
	if err != nil {
		return errors.Wrap(err, "mark campaign sent")
	}
	return checkAffected(res, id)
}

func (r *CampaignRepository) MarkFailed(ctx context.Context, id string) error {
	return r.UpdateStatus(ctx, id, model.CampaignFailed)
}

// ListDue returns scheduled campaigns whose date has passed, oldest first.
func (r *CampaignRepository) ListDue(ctx context.Context, now time.Time) ([]*model.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM newsletter_campaigns
		WHERE status=$1 AND scheduled_date IS NOT NULL AND scheduled_date <= $2
		ORDER BY scheduled_date ASC
	`
	return r.queryCampaigns(ctx, query, model.CampaignScheduled, now)
}

// LastSent returns nil, nil when nothing has been sent yet.
func (r *CampaignRepository) LastSent(ctx context.Context) (*model.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM newsletter_campaigns
		WHERE status=$1
		ORDER BY sent_date DESC NULLS LAST
		LIMIT 1
	`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, model.CampaignSent))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "last sent campaign")
	}
	return c, nil
}

// ====================== Analytics ======================

// RecordOpen stores the first open of campaignID by subscriberID and bumps
// total_opens. It reports false for repeat opens.
func (r *CampaignRepository) RecordOpen(ctx context.Context, subscriberID, campaignID string) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(err, "begin open tx")
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO campaign_analytics (id, subscriber_id, campaign_id, event_type, event_data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (subscriber_id, campaign_id) WHERE event_type = 'open' DO NOTHING
	`
	res, err := tx.ExecContext(ctx, insert, uuid.NewString(), subscriberID, campaignID, model.EventOpen, model.EventData{})
	if err != nil {
		return false, errors.Wrap(err, "insert open event")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `UPDATE newsletter_campaigns SET total_opens=total_opens+1 WHERE id=$1`, campaignID); err != nil {
		return false, errors.Wrap(err, "increment opens")
	}
	return true, errors.Wrap(tx.Commit(), "commit open tx")
}

// RecordClick stores every click and bumps total_clicks.
func (r *CampaignRepository) RecordClick(ctx context.Context, subscriberID, campaignID, url string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin click tx")
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO campaign_analytics (id, subscriber_id, campaign_id, event_type, event_data)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), subscriberID, campaignID, model.EventClick, model.EventData{URL: url}); err != nil {
		return errors.Wrap(err, "insert click event")
	}
	if _, err := tx.ExecContext(ctx, `UPDATE newsletter_campaigns SET total_clicks=total_clicks+1 WHERE id=$1`, campaignID); err != nil {
		return errors.Wrap(err, "increment clicks")
	}
	return errors.Wrap(tx.Commit(), "commit click tx")
}

func (r *CampaignRepository) IncrementUnsubscribes(ctx context.Context, campaignID string) error {
	if err := validID(campaignID); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE newsletter_campaigns SET unsubscribes=unsubscribes+1 WHERE id=$1`, campaignID)
	if err != nil {
		return errors.Wrap(err, "increment unsubscribes")
	}
	return checkAffected(res, campaignID)
}

func (r *CampaignRepository) TopLinks(ctx context.Context, campaignID string, limit int) ([]model.LinkStat, error) {
	query := `
		SELECT event_data->>'url' AS url, COUNT(*) AS clicks
		FROM campaign_analytics
		WHERE campaign_id=$1 AND event_type=$2 AND event_data->>'url' IS NOT NULL
		GROUP BY url
		ORDER BY clicks DESC, url ASC
		LIMIT $3
	`
	rows, err := r.DB.QueryContext(ctx, query, campaignID, model.EventClick, limit)
	if err != nil {
		return nil, errors.Wrap(err, "top links")
	}
	defer rows.Close()

	links := []model.LinkStat{}
	for rows.Next() {
		var l model.LinkStat
		if err := rows.Scan(&l.URL, &l.Clicks); err != nil {
			return nil, errors.Wrap(err, "scan link stat")
		}
		links = append(links, l)
	}
	return links, errors.Wrap(rows.Err(), "iterate link stats")
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
