// internal/repository/subscriber_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
)

const (
	DefaultSubscriberLimit = 50
	SearchLimit            = 50

	SubscriberActive   = "active"
	SubscriberInactive = "inactive"
)

type SubscriberRepositoryInterface interface {
	FindByEmail(ctx context.Context, email string) (*model.Subscriber, error)
	FindByID(ctx context.Context, id string) (*model.Subscriber, error)
	Create(ctx context.Context, s *model.Subscriber) error
	Reactivate(ctx context.Context, email string, name *string) (*model.Subscriber, error)
	Deactivate(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]*model.Subscriber, error)
	List(ctx context.Context, q ListQuery) ([]*model.Subscriber, int, error)
	Search(ctx context.Context, term string, limit int) ([]*model.Subscriber, error)
	Count(ctx context.Context, active *bool) (int, error)
}

type SubscriberRepository struct {
	DB *sql.DB
}

const subscriberColumns = "id, email, name, is_active, subscribed_at, unsubscribed_at"

func scanSubscriber(s scanner) (*model.Subscriber, error) {
	var sub model.Subscriber
	err := s.Scan(&sub.ID, &sub.Email, &sub.Name, &sub.IsActive, &sub.SubscribedAt, &sub.UnsubscribedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriberRepository) querySubscribers(ctx context.Context, query string, args ...any) ([]*model.Subscriber, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query subscribers")
	}
	defer rows.Close()

	subs := []*model.Subscriber{}
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan subscriber")
		}
		subs = append(subs, sub)
	}
	return subs, errors.Wrap(rows.Err(), "iterate subscribers")
}

// FindByEmail returns nil, nil when nobody has subscribed with email.
func (r *SubscriberRepository) FindByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM newsletter_subscribers WHERE email=$1`
	sub, err := scanSubscriber(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find subscriber by email")
	}
	return sub, nil
}

func (r *SubscriberRepository) FindByID(ctx context.Context, id string) (*model.Subscriber, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.NewNotFound("Subscriber", id)
	}
	query := `SELECT ` + subscriberColumns + ` FROM newsletter_subscribers WHERE id=$1`
	sub, err := scanSubscriber(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("Subscriber", id)
		}
		return nil, errors.Wrap(err, "find subscriber by id")
	}
	return sub, nil
}

func (r *SubscriberRepository) Create(ctx context.Context, s *model.Subscriber) error {
	s.ID = uuid.NewString()
	s.IsActive = true
	query := `
		INSERT INTO newsletter_subscribers (id, email, name, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING subscribed_at
	`
	err := r.DB.QueryRowContext(ctx, query, s.ID, s.Email, s.Name).Scan(&s.SubscribedAt)
	return errors.Wrap(err, "insert subscriber")
}

// Reactivate flips an existing row back to active, keeping its id. A nil name
// leaves the stored name untouched.
func (r *SubscriberRepository) Reactivate(ctx context.Context, email string, name *string) (*model.Subscriber, error) {
	query := `
		UPDATE newsletter_subscribers
		SET is_active=TRUE, unsubscribed_at=NULL, name=COALESCE($2, name)
		WHERE email=$1
		RETURNING ` + subscriberColumns
	sub, err := scanSubscriber(r.DB.QueryRowContext(ctx, query, email, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("Subscriber", email)
		}
		return nil, errors.Wrap(err, "reactivate subscriber")
	}
	return sub, nil
}

func (r *SubscriberRepository) Deactivate(ctx context.Context, id string) error {
	query := `
		UPDATE newsletter_subscribers
		SET is_active=FALSE, unsubscribed_at=COALESCE(unsubscribed_at, NOW())
		WHERE id=$1
	`
	_, err := r.DB.ExecContext(ctx, query, id)
	return errors.Wrap(err, "deactivate subscriber")
}

func (r *SubscriberRepository) ListActive(ctx context.Context) ([]*model.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM newsletter_subscribers WHERE is_active=TRUE ORDER BY subscribed_at ASC`
	return r.querySubscribers(ctx, query)
}

// List filters on q.Status "active" or "inactive"; anything else lists everyone.
func (r *SubscriberRepository) List(ctx context.Context, q ListQuery) ([]*model.Subscriber, int, error) {
	w := &where{}
	switch q.Status {
	case SubscriberActive:
		w.add(" AND is_active=$%d", true)
	case SubscriberInactive:
		w.add(" AND is_active=$%d", false)
	}

	limit, args := w.page(q)
	query := fmt.Sprintf("SELECT %s FROM newsletter_subscribers %s ORDER BY subscribed_at DESC", subscriberColumns, w) + limit
	subs, err := r.querySubscribers(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM newsletter_subscribers %s", w)
	if err := r.DB.QueryRowContext(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count subscribers")
	}
	return subs, total, nil
}

func (r *SubscriberRepository) Search(ctx context.Context, term string, limit int) ([]*model.Subscriber, error) {
	query := `
		SELECT ` + subscriberColumns + `
		FROM newsletter_subscribers
		WHERE email ILIKE $1 OR name ILIKE $1
		ORDER BY subscribed_at DESC
		LIMIT $2
	`
	return r.querySubscribers(ctx, query, "%"+escapeLike(term)+"%", limit)
}

// Count counts everyone when active is nil.
func (r *SubscriberRepository) Count(ctx context.Context, active *bool) (int, error) {
	w := &where{}
	if active != nil {
		w.add(" AND is_active=$%d", *active)
	}
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM newsletter_subscribers %s", w)
	if err := r.DB.QueryRowContext(ctx, query, w.args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count subscribers")
	}
	return n, nil
}

// escapeLike makes % and _ in user input match literally.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

var _ SubscriberRepositoryInterface = (*SubscriberRepository)(nil)
