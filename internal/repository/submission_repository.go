// internal/repository/submission_repository.go
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

type SubmissionRepositoryInterface interface {
	CreateContact(ctx context.Context, c *model.ContactInquiry) error
	CreateKlinRequest(ctx context.Context, r *model.KlinRequest) error
	CreateIntelligenceCheck(ctx context.Context, c *model.KlinIntelligenceCheck) error
	CreatePartnership(ctx context.Context, p *model.KlinPartnership) error
	CreateKaizenProject(ctx context.Context, p *model.KaizenProject) error
	CreateBuildPlanner(ctx context.Context, b *model.BuildPlannerSubmission) error

	List(ctx context.Context, kind model.SubmissionKind, q ListQuery) ([]model.Submission, int, error)
	UpdateStatus(ctx context.Context, kind model.SubmissionKind, id, status string, adminNotes *string) (model.Submission, error)
	CountByStatus(ctx context.Context, kind model.SubmissionKind, status string) (int, error)
}

type SubmissionRepository struct {
	DB *sql.DB
}

type scanner interface {
	Scan(dest ...any) error
}

// submissionTable describes how one kind is stored and read back.
type submissionTable struct {
	name    string
	entity  string
	columns string
	scan    func(s scanner) (model.Submission, error)
}

var submissionTables = map[model.SubmissionKind]submissionTable{
	model.KindContact: {
		name:    "contact_inquiries",
		entity:  "Contact",
		columns: "id, name, email, inquiry_type, message, status, admin_notes, created_at",
		scan: func(s scanner) (model.Submission, error) {
			var c model.ContactInquiry
			err := s.Scan(&c.ID, &c.Name, &c.Email, &c.InquiryType, &c.Message, &c.Status, &c.AdminNotes, &c.CreatedAt)
			return &c, err
		},
	},
	model.KindKlinRequest: {
		name:    "klin_requests",
		entity:  "Request",
		columns: "id, name, email, phone, property_type, location, budget, move_in_date, additional_notes, status, admin_notes, created_at",
		scan: func(s scanner) (model.Submission, error) {
			var r model.KlinRequest
			err := s.Scan(&r.ID, &r.Name, &r.Email, &r.Phone, &r.PropertyType, &r.Location, &r.Budget,
				&r.MoveInDate, &r.AdditionalNotes, &r.Status, &r.AdminNotes, &r.CreatedAt)
			return &r, err
		},
	},
	model.KindKlinIntelligence: {
		name:    "klin_intelligence_checks",
		entity:  "Intelligence check",
		columns: "id, name, email, phone, property_address, check_type, urgency, additional_info, status, admin_notes, created_at",
		scan: func(s scanner) (model.Submission, error) {
			var c model.KlinIntelligenceCheck
			err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.PropertyAddress, &c.CheckType, &c.Urgency,
				&c.AdditionalInfo, &c.Status, &c.AdminNotes, &c.CreatedAt)
			return &c, err
		},
	},
	model.KindKlinPartnership: {
		name:    "klin_partnerships",
		entity:  "Partnership",
		columns: "id, company_name, contact_person, email, phone, partnership_type, description, website, status, admin_notes, created_at",
		scan: func(s scanner) (model.Submission, error) {
			var p model.KlinPartnership
			err := s.Scan(&p.ID, &p.CompanyName, &p.ContactPerson, &p.Email, &p.Phone, &p.PartnershipType,
				&p.Description, &p.Website, &p.Status, &p.AdminNotes, &p.CreatedAt)
			return &p, err
		},
	},
	model.KindKaizenProject: {
		name:    "kaizen_projects",
		entity:  "Project",
		columns: "id, name, email, phone, project_type, project_scope, budget, timeline, description, location, status, admin_notes, created_at",
		scan: func(s scanner) (model.Submission, error) {
			var p model.KaizenProject
			err := s.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.ProjectType, &p.ProjectScope, &p.Budget,
				&p.Timeline, &p.Description, &p.Location, &p.Status, &p.AdminNotes, &p.CreatedAt)
			return &p, err
		},
	},
	model.KindBuildPlanner: {
		name:    "build_planner_submissions",
		entity:  "Project",
		columns: "id, name, email, phone, project_type, property_size, budget, start_date, features, additional_notes, status, admin_notes, created_at",
		scan: func(s scanner) (model.Submission, error) {
			var b model.BuildPlannerSubmission
			err := s.Scan(&b.ID, &b.Name, &b.Email, &b.Phone, &b.ProjectType, &b.PropertySize, &b.Budget,
				&b.StartDate, &b.Features, &b.AdditionalNotes, &b.Status, &b.AdminNotes, &b.CreatedAt)
			return &b, err
		},
	},
}

func tableFor(kind model.SubmissionKind) (submissionTable, error) {
	t, ok := submissionTables[kind]
	if !ok {
		return submissionTable{}, fmt.Errorf("unknown submission kind %q", kind)
	}
	return t, nil
}

// EntityName is the label used in not-found and update messages for kind.
func EntityName(kind model.SubmissionKind) string {
	return submissionTables[kind].entity
}

// prepare assigns the id and default status of a new row.
func prepare(meta *model.SubmissionMeta, kind model.SubmissionKind) {
	meta.ID = uuid.NewString()
	if meta.Status == "" {
		meta.Status = kind.DefaultStatus()
	}
}

// ====================== Create ======================

func (r *SubmissionRepository) CreateContact(ctx context.Context, c *model.ContactInquiry) error {
	prepare(&c.SubmissionMeta, model.KindContact)
	query := `
		INSERT INTO contact_inquiries (id, name, email, inquiry_type, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query, c.ID, c.Name, c.Email, c.InquiryType, c.Message, c.Status).Scan(&c.CreatedAt)
	return errors.Wrap(err, "insert contact inquiry")
}

func (r *SubmissionRepository) CreateKlinRequest(ctx context.Context, k *model.KlinRequest) error {
	prepare(&k.SubmissionMeta, model.KindKlinRequest)
	query := `
		INSERT INTO klin_requests (id, name, email, phone, property_type, location, budget, move_in_date, additional_notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query, k.ID, k.Name, k.Email, k.Phone, k.PropertyType, k.Location,
		k.Budget, k.MoveInDate, k.AdditionalNotes, k.Status).Scan(&k.CreatedAt)
	return errors.Wrap(err, "insert klin request")
}

func (r *SubmissionRepository) CreateIntelligenceCheck(ctx context.Context, c *model.KlinIntelligenceCheck) error {
	prepare(&c.SubmissionMeta, model.KindKlinIntelligence)
	query := `
		INSERT INTO klin_intelligence_checks (id, name, email, phone, property_address, check_type, urgency, additional_info, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.PropertyAddress, c.CheckType,
		c.Urgency, c.AdditionalInfo, c.Status).Scan(&c.CreatedAt)
	return errors.Wrap(err, "insert intelligence check")
}

func (r *SubmissionRepository) CreatePartnership(ctx context.Context, p *model.KlinPartnership) error {
	prepare(&p.SubmissionMeta, model.KindKlinPartnership)
	query := `
		INSERT INTO klin_partnerships (id, company_name, contact_person, email, phone, partnership_type, description, website, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query, p.ID, p.CompanyName, p.ContactPerson, p.Email, p.Phone,
		p.PartnershipType, p.Description, p.Website, p.Status).Scan(&p.CreatedAt)
	return errors.Wrap(err, "insert partnership")
}

func (r *SubmissionRepository) CreateKaizenProject(ctx context.Context, p *model.KaizenProject) error {
	prepare(&p.SubmissionMeta, model.KindKaizenProject)
	query := `
		INSERT INTO kaizen_projects (id, name, email, phone, project_type, project_scope, budget, timeline, description, location, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query, p.ID, p.Name, p.Email, p.Phone, p.ProjectType, p.ProjectScope,
		p.Budget, p.Timeline, p.Description, p.Location, p.Status).Scan(&p.CreatedAt)
	return errors.Wrap(err, "insert kaizen project")
}

func (r *SubmissionRepository) CreateBuildPlanner(ctx context.Context, b *model.BuildPlannerSubmission) error {
	prepare(&b.SubmissionMeta, model.KindBuildPlanner)
	query := `
		INSERT INTO build_planner_submissions (id, name, email, phone, project_type, property_size, budget, start_date, features, additional_notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query, b.ID, b.Name, b.Email, b.Phone, b.ProjectType, b.PropertySize,
		b.Budget, b.StartDate, b.Features, b.AdditionalNotes, b.Status).Scan(&b.CreatedAt)
	return errors.Wrap(err, "insert build planner submission")
}

// ====================== Admin ======================

func (r *SubmissionRepository) List(ctx context.Context, kind model.SubmissionKind, q ListQuery) ([]model.Submission, int, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, 0, err
	}

	w := &where{}
	if q.Status != "" {
		w.add(" AND status=$%d", q.Status)
	}

	limit, args := w.page(q)
	query := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY created_at DESC", t.columns, t.name, w) + limit

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "list %s", t.name)
	}
	defer rows.Close()

	items := []model.Submission{}
	for rows.Next() {
		item, err := t.scan(rows)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "scan %s", t.name)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrapf(err, "iterate %s", t.name)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", t.name, w)
	if err := r.DB.QueryRowContext(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrapf(err, "count %s", t.name)
	}

	return items, total, nil
}

func (r *SubmissionRepository) UpdateStatus(ctx context.Context, kind model.SubmissionKind, id, status string, adminNotes *string) (model.Submission, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.NewNotFound(t.entity, id)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET status=$1, admin_notes=COALESCE($2, admin_notes)
		WHERE id=$3
		RETURNING %s
	`, t.name, t.columns)

	item, err := t.scan(r.DB.QueryRowContext(ctx, query, status, adminNotes, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound(t.entity, id)
		}
		return nil, errors.Wrapf(err, "update %s status", t.name)
	}
	return item, nil
}

// CountByStatus counts every row of kind when status is empty.
func (r *SubmissionRepository) CountByStatus(ctx context.Context, kind model.SubmissionKind, status string) (int, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	w := &where{}
	if status != "" {
		w.add(" AND status=$%d", status)
	}

	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", t.name, w)
	if err := r.DB.QueryRowContext(ctx, query, w.args...).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "count %s", t.name)
	}
	return n, nil
}

var _ SubmissionRepositoryInterface = (*SubmissionRepository)(nil)
