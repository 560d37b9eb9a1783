package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
)

// memoryStore держит проекты и инвестиции под одним мьютексом. Review работает на
// копиях и записывает их только при успехе fn, как транзакция с откатом.
type memoryStore struct {
	mu          sync.Mutex
	projects    map[uuid.UUID]*models.Project
	investments map[uuid.UUID]*models.Investment
	users       map[uuid.UUID]models.InvestorSummary
	reviewCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		projects:    make(map[uuid.UUID]*models.Project),
		investments: make(map[uuid.UUID]*models.Investment),
		users:       make(map[uuid.UUID]models.InvestorSummary),
	}
}

func (m *memoryStore) addProject(p models.Project) *models.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.AdminStatus == "" {
		p.AdminStatus = valueobject.ReviewStatusPending
	}
	if p.FundUtilizationDetails == nil {
		p.FundUtilizationDetails = models.FundUtilizationDetails{}
	}
	p.CreatedAt = time.Now()
	m.projects[p.ID] = &p
	return &p
}

func (m *memoryStore) addInvestment(inv models.Investment) *models.Investment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.Status == "" {
		inv.Status = valueobject.ReviewStatusPending
	}
	m.investments[inv.ID] = &inv
	return &inv
}

func (m *memoryStore) project(id uuid.UUID) models.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.projects[id]
}

func (m *memoryStore) investment(id uuid.UUID) models.Investment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.investments[id]
}

type projectRepo struct{ *memoryStore }

func (r projectRepo) Create(_ context.Context, p *models.Project) error {
	p.AdminStatus = valueobject.ReviewStatusPending
	saved := r.addProject(*p)
	*p = *saved
	return nil
}

func (r projectRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, apperror.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (r projectRepo) Update(_ context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.ID]; !ok {
		return apperror.ErrProjectNotFound
	}
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r projectRepo) mutate(id uuid.UUID, fn func(p *models.Project)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return apperror.ErrProjectNotFound
	}
	fn(p)
	return nil
}

func (r projectRepo) UpdateStatus(_ context.Context, id uuid.UUID, status valueobject.ProjectStatus) error {
	return r.mutate(id, func(p *models.Project) { p.Status = status })
}

func (r projectRepo) UpdateNotes(_ context.Context, id uuid.UUID, notes string) error {
	return r.mutate(id, func(p *models.Project) { p.FundUtilizationNotes = notes })
}

func (r projectRepo) UpdateFundDetails(_ context.Context, id uuid.UUID, details models.FundUtilizationDetails) error {
	return r.mutate(id, func(p *models.Project) { p.FundUtilizationDetails = details })
}

func (r projectRepo) SaveReview(_ context.Context, in *models.Project) error {
	return r.mutate(in.ID, func(p *models.Project) {
		p.AdminStatus = in.AdminStatus
		p.RejectionReason = in.RejectionReason
		p.AdminReviewedAt = in.AdminReviewedAt
		p.AdminReviewedBy = in.AdminReviewedBy
	})
}

func (r projectRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return apperror.ErrProjectNotFound
	}
	delete(r.projects, id)
	for invID, inv := range r.investments {
		if inv.ProjectID == id {
			delete(r.investments, invID)
		}
	}
	return nil
}

func (r projectRepo) filter(keep func(p *models.Project) bool) []models.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Project, 0)
	for _, p := range r.projects {
		if keep(p) {
			out = append(out, *p)
		}
	}
	return out
}

func (r projectRepo) ListAll(context.Context) ([]models.Project, error) {
	return r.filter(func(*models.Project) bool { return true }), nil
}

func (r projectRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	return r.filter(func(p *models.Project) bool { return p.OwnerID == ownerID }), nil
}

func (r projectRepo) ListApproved(context.Context) ([]models.Project, error) {
	return r.filter(func(p *models.Project) bool { return p.AdminStatus == valueobject.ReviewStatusApproved }), nil
}

func (r projectRepo) ListOpen(context.Context) ([]models.Project, error) {
	return r.filter(func(p *models.Project) bool {
		return p.AdminStatus == valueobject.ReviewStatusApproved && p.AmountFunded < p.Amount
	}), nil
}

func (r projectRepo) Stats(context.Context) (*models.ProjectStats, error) {
	stats := &models.ProjectStats{ByAdminStatus: map[string]int{}, ByStatus: map[string]int{}}
	for _, p := range r.filter(func(*models.Project) bool { return true }) {
		stats.Total++
		stats.ByAdminStatus[string(p.AdminStatus)]++
		stats.ByStatus[string(p.Status)]++
		stats.TotalRequested += p.Amount
		stats.TotalFunded += p.AmountFunded
	}
	return stats, nil
}

type investmentRepo struct{ *memoryStore }

func (r investmentRepo) Create(_ context.Context, inv *models.Investment) error {
	saved := r.addInvestment(*inv)
	*inv = *saved
	return nil
}

func (r investmentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.investments[id]
	if !ok {
		return nil, apperror.ErrInvestmentNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r investmentRepo) Review(_ context.Context, id uuid.UUID, fn func(*models.Investment, *models.Project) error) (*models.Investment, *models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviewCalls++

	stored, ok := r.investments[id]
	if !ok {
		return nil, nil, apperror.ErrInvestmentNotFound
	}
	project, ok := r.projects[stored.ProjectID]
	if !ok {
		return nil, nil, apperror.ErrProjectNotFound
	}

	inv := *stored
	proj := *project
	if err := fn(&inv, &proj); err != nil {
		return nil, nil, err
	}

	*stored = inv
	*project = proj
	return &inv, &proj, nil
}

func (r investmentRepo) views(keep func(*models.Investment) bool) []models.InvestmentView {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.InvestmentView, 0)
	for _, inv := range r.investments {
		if !keep(inv) {
			continue
		}
		p := r.projects[inv.ProjectID]
		out = append(out, models.InvestmentView{
			Investment: *inv,
			Project:    models.ProjectSummary{Title: p.Title, Amount: p.Amount, Location: p.Location, AmountFunded: p.AmountFunded, Status: p.Status},
			Investor:   r.users[inv.InvestorID],
		})
	}
	return out
}

func (r investmentRepo) ListAll(context.Context) ([]models.InvestmentView, error) {
	return r.views(func(*models.Investment) bool { return true }), nil
}

func (r investmentRepo) ListByInvestor(_ context.Context, id uuid.UUID) ([]models.InvestmentView, error) {
	return r.views(func(inv *models.Investment) bool { return inv.InvestorID == id }), nil
}

func (r investmentRepo) ListByProject(_ context.Context, id uuid.UUID) ([]models.InvestmentView, error) {
	return r.views(func(inv *models.Investment) bool { return inv.ProjectID == id }), nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BroadcastToUser(userID uuid.UUID, event string, data interface{}) error {
	args := m.Called(userID, event, data)
	return args.Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Load(ctx context.Context, key string, dst interface{}) bool {
	return m.Called(key).Bool(0)
}

func (m *mockCache) Store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	m.Called(key, value)
}

func (m *mockCache) Invalidate(ctx context.Context, keys ...string) {
	m.Called(keys)
}
