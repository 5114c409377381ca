// internal/model/campaign.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const (
	CampaignDraft     = "draft"
	CampaignScheduled = "scheduled"
	CampaignSending   = "sending"
	CampaignSent      = "sent"
	CampaignFailed    = "failed"

	DefaultFromName = "Wealthy Elephant"
)

type Campaign struct {
	ID            string          `db:"id" json:"id"`
	Subject       string          `db:"subject" json:"subject"`
	PreviewText   string          `db:"preview_text" json:"previewText"`
	FromName      string          `db:"from_name" json:"fromName"`
	Content       CampaignContent `db:"content" json:"content"`
	Status        string          `db:"status" json:"status"`
	ScheduledDate *time.Time      `db:"scheduled_date" json:"scheduledDate"`
	SentDate      *time.Time      `db:"sent_date" json:"sentDate"`
	TotalSent     int             `db:"total_sent" json:"totalSent"`
	TotalOpens    int             `db:"total_opens" json:"totalOpens"`
	TotalClicks   int             `db:"total_clicks" json:"totalClicks"`
	Unsubscribes  int             `db:"unsubscribes" json:"unsubscribes"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     *time.Time      `db:"updated_at" json:"updatedAt"`
}

// OpenRate is opens per delivered email as a percentage with one decimal.
func (c *Campaign) OpenRate() float64 {
	return Rate(c.TotalOpens, c.TotalSent)
}

func (c *Campaign) ClickRate() float64 {
	return Rate(c.TotalClicks, c.TotalSent)
}

func Rate(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// Block types.
const (
	BlockText   = "text"
	BlockImage  = "image"
	BlockButton = "button"
)

type ContentBlock struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty"`
	Alt     string `json:"alt,omitempty"`
	Link    string `json:"link,omitempty"`
	Text    string `json:"text,omitempty"`
	Style   string `json:"style,omitempty"`
}

// CampaignContent is stored as JSONB.
type CampaignContent struct {
	Blocks []ContentBlock `json:"blocks"`
}

func (c CampaignContent) Value() (driver.Value, error) {
	if c.Blocks == nil {
		c.Blocks = []ContentBlock{}
	}
	return json.Marshal(c)
}

func (c *CampaignContent) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		c.Blocks = []ContentBlock{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported campaign content type %T", src)
	}
	return json.Unmarshal(raw, c)
}

// CampaignSummary is the row shape of the admin campaign list.
type CampaignSummary struct {
	ID            string     `json:"id"`
	Subject       string     `json:"subject"`
	Status        string     `json:"status"`
	SentDate      *time.Time `json:"sentDate"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	CreatedAt     time.Time  `json:"createdAt"`
	OpenRate      float64    `json:"openRate"`
	ClickRate     float64    `json:"clickRate"`
	TotalSent     int        `json:"totalSent"`
}

func (c *Campaign) Summary() CampaignSummary {
	return CampaignSummary{
		ID:            c.ID,
		Subject:       c.Subject,
		Status:        c.Status,
		SentDate:      c.SentDate,
		ScheduledDate: c.ScheduledDate,
		CreatedAt:     c.CreatedAt,
		OpenRate:      c.OpenRate(),
		ClickRate:     c.ClickRate(),
		TotalSent:     c.TotalSent,
	}
}

// Analytics event types.
const (
	EventOpen  = "open"
	EventClick = "click"
)

type EventData struct {
	URL string `json:"url,omitempty"`
}

func (d EventData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

type CampaignEvent struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	CampaignID   string    `json:"campaignId"`
	EventType    string    `json:"eventType"`
	EventData    EventData `json:"eventData"`
	CreatedAt    time.Time `json:"createdAt"`
}

type LinkStat struct {
	URL    string `json:"url"`
	Clicks int    `json:"clicks"`
}

type CampaignAnalytics struct {
	Subject      string     `json:"subject"`
	SentDate     *time.Time `json:"sentDate"`
	TotalSent    int        `json:"totalSent"`
	OpenRate     float64    `json:"openRate"`
	ClickRate    float64    `json:"clickRate"`
	Unsubscribes int        `json:"unsubscribes"`
	TopLinks     []LinkStat `json:"topLinks"`
}
