package model

import "time"

type Subscriber struct {
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	Name           *string    `db:"name" json:"name"`
	IsActive       bool       `db:"is_active" json:"isActive"`
	SubscribedAt   time.Time  `db:"subscribed_at" json:"subscribedAt"`
	UnsubscribedAt *time.Time `db:"unsubscribed_at" json:"unsubscribedAt"`
}

func (s *Subscriber) DisplayName() string {
	if s.Name == nil {
		return ""
	}
	return *s.Name
}

// SubscriberView is what the admin subscriber endpoints return.
type SubscriberView struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name"`
	Status       string    `json:"status"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

func (s *Subscriber) View() SubscriberView {
	status := "inactive"
	if s.IsActive {
		status = "active"
	}
	return SubscriberView{
		ID:           s.ID,
		Email:        s.Email,
		Name:         s.Name,
		Status:       status,
		SubscribedAt: s.SubscribedAt,
	}
}
