// internal/model/requests.go
package model

import "time"

// Request DTOs. Each public form decodes into exactly one of these before validation.

type ContactRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	InquiryType string `json:"inquiryType" validate:"required,oneof=general support partnership other"`
	Message     string `json:"message" validate:"required,min=10,max=2000"`
}

type KlinRentalRequest struct {
	Name            string  `json:"name" validate:"required,min=2,max=100"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           string  `json:"phone" validate:"required,min=10,max=20"`
	PropertyType    string  `json:"propertyType" validate:"required,oneof=apartment house condo studio other"`
	Location        string  `json:"location" validate:"required,min=2,max=200"`
	Budget          string  `json:"budget" validate:"required,min=1,max=50"`
	MoveInDate      *string `json:"moveInDate" validate:"omitempty,max=50"`
	AdditionalNotes *string `json:"additionalNotes" validate:"omitempty,max=1000"`
}

type KlinIntelligenceRequest struct {
	Name            string  `json:"name" validate:"required,min=2,max=100"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           string  `json:"phone" validate:"required,min=10,max=20"`
	PropertyAddress string  `json:"propertyAddress" validate:"required,min=5,max=300"`
	CheckType       string  `json:"checkType" validate:"required,oneof=background credit rental-history comprehensive"`
	Urgency         string  `json:"urgency" validate:"required,oneof=normal urgent asap"`
	AdditionalInfo  *string `json:"additionalInfo" validate:"omitempty,max=1000"`
}

// ApplyDefaults fills fields the form may omit.
func (r *KlinIntelligenceRequest) ApplyDefaults() {
	if r.Urgency == "" {
		r.Urgency = "normal"
	}
}

type KlinPartnershipRequest struct {
	CompanyName     string  `json:"companyName" validate:"required,min=2,max=150"`
	ContactPerson   string  `json:"contactPerson" validate:"required,min=2,max=100"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           string  `json:"phone" validate:"required,min=10,max=20"`
	PartnershipType string  `json:"partnershipType" validate:"required,oneof=property-owner agent vendor investor other"`
	Description     string  `json:"description" validate:"required,min=20,max=2000"`
	Website         *string `json:"website" validate:"omitempty,url"`
}

func (r *KlinPartnershipRequest) ApplyDefaults() {
	if r.Website != nil && *r.Website == "" {
		r.Website = nil
	}
}

type KaizenProjectRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        string  `json:"phone" validate:"required,min=10,max=20"`
	ProjectType  string  `json:"projectType" validate:"required,oneof=residential commercial renovation new-build other"`
	ProjectScope string  `json:"projectScope" validate:"required,oneof=small medium large enterprise"`
	Budget       string  `json:"budget" validate:"required,min=1,max=50"`
	Timeline     string  `json:"timeline" validate:"required,min=1,max=50"`
	Description  string  `json:"description" validate:"required,min=20,max=2000"`
	Location     *string `json:"location" validate:"omitempty,max=200"`
}

type BuildPlannerRequest struct {
	Name            string  `json:"name" validate:"required,min=2,max=100"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           string  `json:"phone" validate:"required,min=10,max=20"`
	ProjectType     string  `json:"projectType" validate:"required,oneof=residential commercial mixed-use industrial"`
	PropertySize    string  `json:"propertySize" validate:"required,min=1,max=50"`
	Budget          string  `json:"budget" validate:"required,min=1,max=50"`
	StartDate       *string `json:"startDate" validate:"omitempty,max=50"`
	Features        string  `json:"features" validate:"required,min=10,max=2000"`
	AdditionalNotes *string `json:"additionalNotes" validate:"omitempty,max=1000"`
}

type NewsletterRequest struct {
	Email string  `json:"email" validate:"required,email"`
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
}

func (r *NewsletterRequest) ApplyDefaults() {
	if r.Name != nil && *r.Name == "" {
		r.Name = nil
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateStatusRequest struct {
	Status     string  `json:"status" validate:"required,max=50"`
	AdminNotes *string `json:"adminNotes" validate:"omitempty,max=5000"`
}

type CampaignBlockRequest struct {
	Type    string `json:"type" validate:"required,oneof=text image button"`
	Content string `json:"content"`
	URL     string `json:"url" validate:"required_if=Type image"`
	Alt     string `json:"alt"`
	Link    string `json:"link" validate:"required_if=Type button"`
	Text    string `json:"text" validate:"required_if=Type button"`
	Style   string `json:"style" validate:"omitempty,oneof=primary secondary"`
}

type CampaignContentRequest struct {
	Blocks []CampaignBlockRequest `json:"blocks" validate:"required,dive"`
}

type CampaignRequest struct {
	Subject       string                  `json:"subject" validate:"required,min=1,max=200"`
	PreviewText   string                  `json:"previewText" validate:"max=200"`
	FromName      string                  `json:"fromName" validate:"max=100"`
	Content       *CampaignContentRequest `json:"content" validate:"required"`
	Status        string                  `json:"status" validate:"oneof=draft scheduled sent"`
	ScheduledDate *time.Time              `json:"scheduledDate"`
}

func (r *CampaignRequest) ApplyDefaults() {
	if r.FromName == "" {
		r.FromName = DefaultFromName
	}
	if r.Status == "" {
		r.Status = CampaignDraft
	}
}

// ToCampaign copies the validated request onto a campaign row.
func (r *CampaignRequest) ToCampaign(c *Campaign) {
	c.Subject = r.Subject
	c.PreviewText = r.PreviewText
	c.FromName = r.FromName
	c.Status = r.Status
	c.ScheduledDate = r.ScheduledDate
	c.Content = CampaignContent{Blocks: make([]ContentBlock, 0, len(r.Content.Blocks))}
	for _, b := range r.Content.Blocks {
		c.Content.Blocks = append(c.Content.Blocks, ContentBlock(b))
	}
}

const SendTypeScheduled = "scheduled"

type SendCampaignRequest struct {
	SendType      string     `json:"sendType" validate:"omitempty,oneof=now scheduled"`
	ScheduledDate *time.Time `json:"scheduledDate" validate:"required_if=SendType scheduled"`
}

type TestSendRequest struct {
	Email string `json:"email" validate:"required,email"`
}
