package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/notify"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
)

// ---- Mock Campaign Repository ----
type mockCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[string]*model.Campaign
	statuses  []string
	sentTotal int
	opens     map[string]bool
	clicks    []string
	unsubs    map[string]int
	topLinks  []model.LinkStat
	lastSent  *model.Campaign
	due       []*model.Campaign
	markErr   error
}

func newMockCampaignRepo(cs ...*model.Campaign) *mockCampaignRepo {
	r := &mockCampaignRepo{
		campaigns: map[string]*model.Campaign{},
		opens:     map[string]bool{},
		unsubs:    map[string]int{},
	}
	for _, c := range cs {
		r.campaigns[c.ID] = c
	}
	return r
}

func (m *mockCampaignRepo) get(id string) (*model.Campaign, error) {
	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewNotFound("Campaign", id)
	}
	return c, nil
}

func (m *mockCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = fmt.Sprintf("c-%d", len(m.campaigns)+1)
	c.CreatedAt = time.Now()
	m.campaigns[c.ID] = c
	return nil
}

func (m *mockCampaignRepo) Update(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.get(c.ID); err != nil {
		return err
	}
	m.campaigns[c.ID] = c
	return nil
}

func (m *mockCampaignRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.get(id); err != nil {
		return err
	}
	delete(m.campaigns, id)
	return nil
}

func (m *mockCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(id)
	if err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

func (m *mockCampaignRepo) List(_ context.Context, q repository.ListQuery) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Campaign{}
	for _, c := range m.campaigns {
		if q.Status == "" || c.Status == q.Status {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *mockCampaignRepo) setStatus(id, status string) error {
	c, err := m.get(id)
	if err != nil {
		return err
	}
	c.Status = status
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *mockCampaignRepo) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setStatus(id, status)
}

func (m *mockCampaignRepo) Schedule(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.setStatus(id, model.CampaignScheduled); err != nil {
		return err
	}
	m.campaigns[id].ScheduledDate = &at
	return nil
}

func (m *mockCampaignRepo) MarkSent(_ context.Context, id string, totalSent int, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	if err := m.setStatus(id, model.CampaignSent); err != nil {
		return err
	}
	m.sentTotal = totalSent
	m.campaigns[id].TotalSent = totalSent
	m.campaigns[id].SentDate = &sentAt
	return nil
}

func (m *mockCampaignRepo) MarkFailed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setStatus(id, model.CampaignFailed)
}

func (m *mockCampaignRepo) ListDue(_ context.Context, _ time.Time) ([]*model.Campaign, error) {
	return m.due, nil
}

func (m *mockCampaignRepo) LastSent(_ context.Context) (*model.Campaign, error) {
	return m.lastSent, nil
}

func (m *mockCampaignRepo) RecordOpen(_ context.Context, subscriberID, campaignID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := subscriberID + "/" + campaignID
	if m.opens[key] {
		return false, nil
	}
	m.opens[key] = true
	return true, nil
}

func (m *mockCampaignRepo) RecordClick(_ context.Context, _, _ string, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, url)
	return nil
}

func (m *mockCampaignRepo) IncrementUnsubscribes(_ context.Context, campaignID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.get(campaignID); err != nil {
		return err
	}
	m.unsubs[campaignID]++
	return nil
}

func (m *mockCampaignRepo) TopLinks(_ context.Context, _ string, _ int) ([]model.LinkStat, error) {
	return m.topLinks, nil
}

var _ repository.CampaignRepositoryInterface = (*mockCampaignRepo)(nil)

// ---- Mock Subscriber Repository ----
type mockSubscriberRepo struct {
	mu      sync.Mutex
	subs    []*model.Subscriber
	listErr error
}

func (m *mockSubscriberRepo) FindByEmail(_ context.Context, email string) (*model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.Email == email {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockSubscriberRepo) FindByID(_ context.Context, id string) (*model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, appErrors.NewNotFound("Subscriber", id)
}

func (m *mockSubscriberRepo) Create(_ context.Context, s *model.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = fmt.Sprintf("s-%d", len(m.subs)+1)
	s.IsActive = true
	s.SubscribedAt = time.Now()
	m.subs = append(m.subs, s)
	return nil
}

func (m *mockSubscriberRepo) Reactivate(_ context.Context, email string, name *string) (*model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.Email == email {
			s.IsActive = true
			s.UnsubscribedAt = nil
			if name != nil {
				s.Name = name
			}
			return s, nil
		}
	}
	return nil, appErrors.NewNotFound("Subscriber", email)
}

func (m *mockSubscriberRepo) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.ID == id {
			now := time.Now()
			s.IsActive = false
			s.UnsubscribedAt = &now
		}
	}
	return nil
}

func (m *mockSubscriberRepo) ListActive(_ context.Context) ([]*model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []*model.Subscriber{}
	for _, s := range m.subs {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSubscriberRepo) List(_ context.Context, q repository.ListQuery) ([]*model.Subscriber, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Subscriber{}
	for _, s := range m.subs {
		if q.Status == repository.SubscriberActive && !s.IsActive {
			continue
		}
		if q.Status == repository.SubscriberInactive && s.IsActive {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockSubscriberRepo) Search(_ context.Context, term string, _ int) ([]*model.Subscriber, error) {
	return m.subs, nil
}

func (m *mockSubscriberRepo) Count(_ context.Context, active *bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.subs {
		if active == nil || s.IsActive == *active {
			n++
		}
	}
	return n, nil
}

var _ repository.SubscriberRepositoryInterface = (*mockSubscriberRepo)(nil)

// fakeSubscribers builds n active subscribers with unique addresses.
func fakeSubscribers(n int) []*model.Subscriber {
	f := gofakeit.New(42)
	subs := make([]*model.Subscriber, n)
	for i := range subs {
		name := f.Name()
		subs[i] = &model.Subscriber{
			ID:       fmt.Sprintf("sub-%03d", i),
			Email:    fmt.Sprintf("%03d.%s", i, f.Email()),
			Name:     &name,
			IsActive: true,
		}
	}
	return subs
}

// ---- Mock Mailer ----
type mockMailer struct {
	mu          sync.Mutex
	sent        []notify.Message
	fail        map[string]bool
	failAll     bool
	delay       time.Duration
	inFlight    int
	maxInFlight int
}

func (m *mockMailer) Send(ctx context.Context, msg notify.Message) error {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
	if m.failAll || m.fail[msg.To] {
		return errors.New("provider rejected")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.sent...)
}

// ---- Mock Submission Repository ----
type mockSubmissionRepo struct {
	mu      sync.Mutex
	created []model.Submission
	counts  map[string]int
	rows    map[string]model.Submission
	lastQ   repository.ListQuery
	err     error
}

func (m *mockSubmissionRepo) store(meta *model.SubmissionMeta, kind model.SubmissionKind, s model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	meta.ID = fmt.Sprintf("%s-%d", kind, len(m.created)+1)
	meta.Status = kind.DefaultStatus()
	meta.CreatedAt = time.Now()
	m.created = append(m.created, s)
	return nil
}

func (m *mockSubmissionRepo) CreateContact(_ context.Context, c *model.ContactInquiry) error {
	return m.store(&c.SubmissionMeta, model.KindContact, c)
}

func (m *mockSubmissionRepo) CreateKlinRequest(_ context.Context, r *model.KlinRequest) error {
	return m.store(&r.SubmissionMeta, model.KindKlinRequest, r)
}

func (m *mockSubmissionRepo) CreateIntelligenceCheck(_ context.Context, c *model.KlinIntelligenceCheck) error {
	return m.store(&c.SubmissionMeta, model.KindKlinIntelligence, c)
}

func (m *mockSubmissionRepo) CreatePartnership(_ context.Context, p *model.KlinPartnership) error {
	return m.store(&p.SubmissionMeta, model.KindKlinPartnership, p)
}

func (m *mockSubmissionRepo) CreateKaizenProject(_ context.Context, p *model.KaizenProject) error {
	return m.store(&p.SubmissionMeta, model.KindKaizenProject, p)
}

func (m *mockSubmissionRepo) CreateBuildPlanner(_ context.Context, b *model.BuildPlannerSubmission) error {
	return m.store(&b.SubmissionMeta, model.KindBuildPlanner, b)
}

func (m *mockSubmissionRepo) List(_ context.Context, _ model.SubmissionKind, q repository.ListQuery) ([]model.Submission, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQ = q
	return m.created, len(m.created), nil
}

func (m *mockSubmissionRepo) UpdateStatus(_ context.Context, kind model.SubmissionKind, id, status string, notes *string) (model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, appErrors.NewNotFound(repository.EntityName(kind), id)
	}
	c := row.(*model.ContactInquiry)
	c.Status = status
	if notes != nil {
		c.AdminNotes = notes
	}
	return c, nil
}

func (m *mockSubmissionRepo) CountByStatus(_ context.Context, kind model.SubmissionKind, status string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[string(kind)+"/"+status], nil
}

var _ repository.SubmissionRepositoryInterface = (*mockSubmissionRepo)(nil)

// ---- Mock Admin User Repository ----
type mockAdminUserRepo struct {
	mu        sync.Mutex
	users     map[string]*model.AdminUser
	lastLogin map[string]int
}

func newMockAdminUserRepo(users ...*model.AdminUser) *mockAdminUserRepo {
	r := &mockAdminUserRepo{users: map[string]*model.AdminUser{}, lastLogin: map[string]int{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (m *mockAdminUserRepo) FindByEmail(_ context.Context, email string) (*model.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockAdminUserRepo) FindByID(_ context.Context, id string) (*model.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, appErrors.NewNotFound("User", id)
}

func (m *mockAdminUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLogin[id]++
	return nil
}

func (m *mockAdminUserRepo) Upsert(_ context.Context, u *model.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

var _ repository.AdminUserRepositoryInterface = (*mockAdminUserRepo)(nil)

// ---- Mock Notifier ----
type mockNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *mockNotifier) record(s string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, s)
}

func (n *mockNotifier) ContactInquiry(_ context.Context, c *model.ContactInquiry) {
	n.record("contact:" + c.Email)
}

func (n *mockNotifier) KlinRequest(_ context.Context, r *model.KlinRequest) {
	n.record("klin_request:" + r.Email)
}

func (n *mockNotifier) KlinIntelligence(_ context.Context, c *model.KlinIntelligenceCheck) {
	n.record("klin_intelligence:" + c.Email)
}

func (n *mockNotifier) KlinPartnership(_ context.Context, p *model.KlinPartnership) {
	n.record("klin_partnership:" + p.Email)
}

func (n *mockNotifier) KaizenProject(_ context.Context, p *model.KaizenProject) {
	n.record("kaizen_project:" + p.Email)
}

func (n *mockNotifier) BuildPlanner(_ context.Context, b *model.BuildPlannerSubmission) {
	n.record("build_planner:" + b.Email)
}

func (n *mockNotifier) NewsletterWelcome(_ context.Context, email, name string) {
	n.record("welcome:" + email + ":" + name)
}

var _ Notifier = (*mockNotifier)(nil)

// ---- Recording event publisher ----
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType+":"+key)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// ---- Fake dispatcher ----
type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []string
	err        error
}

func (d *fakeDispatcher) Dispatch(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.dispatched = append(d.dispatched, id)
	return nil
}

type fakeTracker struct {
	held map[string]bool
	err  error
}

func (f fakeTracker) Held(_ context.Context, id string) (bool, error) {
	return f.held[id], f.err
}
