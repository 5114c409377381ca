// internal/model/submission.go
package model

import "time"

// SubmissionKind names one public form and the table behind it.
type SubmissionKind string

const (
	KindContact          SubmissionKind = "contact"
	KindKlinRequest      SubmissionKind = "klin_request"
	KindKlinIntelligence SubmissionKind = "klin_intelligence"
	KindKlinPartnership  SubmissionKind = "klin_partnership"
	KindKaizenProject    SubmissionKind = "kaizen_project"
	KindBuildPlanner     SubmissionKind = "build_planner"
)

const (
	StatusNew       = "new"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// DefaultStatus is the status a fresh submission of this kind starts in.
func (k SubmissionKind) DefaultStatus() string {
	if k == KindContact {
		return StatusNew
	}
	return StatusPending
}

// Submission is implemented by every stored form row.
type Submission interface {
	SubmissionID() string
}

type SubmissionMeta struct {
	ID         string    `db:"id" json:"id"`
	Status     string    `db:"status" json:"status"`
	AdminNotes *string   `db:"admin_notes" json:"adminNotes"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

func (m SubmissionMeta) SubmissionID() string { return m.ID }

type ContactInquiry struct {
	SubmissionMeta
	Name        string `db:"name" json:"name"`
	Email       string `db:"email" json:"email"`
	InquiryType string `db:"inquiry_type" json:"inquiryType"`
	Message     string `db:"message" json:"message"`
}

type KlinRequest struct {
	SubmissionMeta
	Name            string  `db:"name" json:"name"`
	Email           string  `db:"email" json:"email"`
	Phone           string  `db:"phone" json:"phone"`
	PropertyType    string  `db:"property_type" json:"propertyType"`
	Location        string  `db:"location" json:"location"`
	Budget          string  `db:"budget" json:"budget"`
	MoveInDate      *string `db:"move_in_date" json:"moveInDate"`
	AdditionalNotes *string `db:"additional_notes" json:"additionalNotes"`
}

type KlinIntelligenceCheck struct {
	SubmissionMeta
	Name            string  `db:"name" json:"name"`
	Email           string  `db:"email" json:"email"`
	Phone           string  `db:"phone" json:"phone"`
	PropertyAddress string  `db:"property_address" json:"propertyAddress"`
	CheckType       string  `db:"check_type" json:"checkType"`
	Urgency         string  `db:"urgency" json:"urgency"`
	AdditionalInfo  *string `db:"additional_info" json:"additionalInfo"`
}

type KlinPartnership struct {
	SubmissionMeta
	CompanyName     string  `db:"company_name" json:"companyName"`
	ContactPerson   string  `db:"contact_person" json:"contactPerson"`
	Email           string  `db:"email" json:"email"`
	Phone           string  `db:"phone" json:"phone"`
	PartnershipType string  `db:"partnership_type" json:"partnershipType"`
	Description     string  `db:"description" json:"description"`
	Website         *string `db:"website" json:"website"`
}

type KaizenProject struct {
	SubmissionMeta
	Name         string  `db:"name" json:"name"`
	Email        string  `db:"email" json:"email"`
	Phone        string  `db:"phone" json:"phone"`
	ProjectType  string  `db:"project_type" json:"projectType"`
	ProjectScope string  `db:"project_scope" json:"projectScope"`
	Budget       string  `db:"budget" json:"budget"`
	Timeline     string  `db:"timeline" json:"timeline"`
	Description  string  `db:"description" json:"description"`
	Location     *string `db:"location" json:"location"`
}

type BuildPlannerSubmission struct {
	SubmissionMeta
	Name            string  `db:"name" json:"name"`
	Email           string  `db:"email" json:"email"`
	Phone           string  `db:"phone" json:"phone"`
	ProjectType     string  `db:"project_type" json:"projectType"`
	PropertySize    string  `db:"property_size" json:"propertySize"`
	Budget          string  `db:"budget" json:"budget"`
	StartDate       *string `db:"start_date" json:"startDate"`
	Features        string  `db:"features" json:"features"`
	AdditionalNotes *string `db:"additional_notes" json:"additionalNotes"`
}

type ContactCounts struct {
	Total   int `json:"total"`
	New     int `json:"new"`
	Pending int `json:"pending"`
}

type WorkCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

type DashboardStats struct {
	Contacts       ContactCounts    `json:"contacts"`
	KlinRequests   WorkCounts       `json:"klinRequests"`
	KaizenProjects WorkCounts       `json:"kaizenProjects"`
	Newsletter     NewsletterTotals `json:"newsletter"`
}

type NewsletterTotals struct {
	TotalSubscribers  int `json:"totalSubscribers"`
	ActiveSubscribers int `json:"activeSubscribers"`
}

type LastCampaign struct {
	ID        string     `json:"id"`
	Subject   string     `json:"subject"`
	SentDate  *time.Time `json:"sentDate"`
	OpenRate  float64    `json:"openRate"`
	ClickRate float64    `json:"clickRate"`
	TotalSent int        `json:"totalSent"`
}

type NewsletterStats struct {
	TotalSubscribers  int           `json:"totalSubscribers"`
	ActiveSubscribers int           `json:"activeSubscribers"`
	Unsubscribed      int           `json:"unsubscribed"`
	LastCampaign      *LastCampaign `json:"lastCampaign"`
}
