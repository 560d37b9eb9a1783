package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/ws"
)

var adminActor = &Principal{ID: uuid.New(), Role: valueobject.RoleAdmin, Name: "admin"}

type investmentFixture struct {
	store    *memoryStore
	svc      *InvestmentService
	notifier *mockNotifier
	project  *models.Project
}

func newInvestmentFixture(t *testing.T, amount float64) *investmentFixture {
	t.Helper()
	store := newMemoryStore()
	notifier := &mockNotifier{}
	notifier.On("BroadcastToUser", mock.Anything, ws.EventInvestmentStatusChanged, mock.Anything).Return(nil)

	project := store.addProject(models.Project{
		Title:       "Капельное орошение",
		Amount:      amount,
		Status:      valueobject.ProjectStatusInProgress,
		AdminStatus: valueobject.ReviewStatusApproved,
		OwnerID:     uuid.New(),
	})

	return &investmentFixture{
		store:    store,
		svc:      NewInvestmentService(investmentRepo{store}, projectRepo{store}, nil, notifier),
		notifier: notifier,
		project:  project,
	}
}

func (f *investmentFixture) invest(amount float64) *models.Investment {
	return f.store.addInvestment(models.Investment{Amount: amount, ProjectID: f.project.ID, InvestorID: uuid.New()})
}

func (f *investmentFixture) review(t *testing.T, id uuid.UUID, action, reason string) (*models.Investment, error) {
	t.Helper()
	return f.svc.Review(context.Background(), adminActor, id, ReviewInvestmentInput{Action: action, RejectionReason: reason})
}

func TestInvestmentService_ReconciliationExample(t *testing.T) {
	f := newInvestmentFixture(t, 100000)
	a := f.invest(60000)
	b := f.invest(40000)

	_, err := f.review(t, a.ID, "approve", "")
	require.NoError(t, err)
	p := f.store.project(f.project.ID)
	assert.Equal(t, 60000.0, p.AmountFunded)
	assert.Equal(t, valueobject.ProjectStatusInProgress, p.Status)

	_, err = f.review(t, b.ID, "approve", "")
	require.NoError(t, err)
	p = f.store.project(f.project.ID)
	assert.Equal(t, 100000.0, p.AmountFunded)
	assert.Equal(t, valueobject.ProjectStatusCompleted, p.Status)

	rejected, err := f.review(t, a.ID, "reject", "документы не подтверждены")
	require.NoError(t, err)
	assert.Equal(t, valueobject.ReviewStatusRejected, rejected.Status)
	assert.Nil(t, rejected.AdminApprovedAt)
	p = f.store.project(f.project.ID)
	assert.Equal(t, 40000.0, p.AmountFunded)
	assert.Equal(t, valueobject.ProjectStatusInProgress, p.Status)
}

func TestInvestmentService_ApproveTwiceIsRejected(t *testing.T) {
	f := newInvestmentFixture(t, 100000)
	a := f.invest(25000)

	approved, err := f.review(t, a.ID, "approve", "")
	require.NoError(t, err)
	assert.Equal(t, "admin", *approved.AdminApprovedBy)

	_, err = f.review(t, a.ID, "approve", "")
	assert.ErrorIs(t, err, apperror.ErrInvestmentAlreadyApproved)
	appErr, _ := apperror.As(err)
	assert.Equal(t, 400, appErr.HTTPStatus)

	assert.Equal(t, 25000.0, f.store.project(f.project.ID).AmountFunded)
}

func TestInvestmentService_ConcurrentApproveAddsOnce(t *testing.T) {
	f := newInvestmentFixture(t, 100000)
	a := f.invest(30000)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Review(context.Background(), adminActor, a.ID, ReviewInvestmentInput{Action: "approve"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(t, err, apperror.ErrInvestmentAlreadyApproved) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, conflicts)
	assert.Equal(t, 30000.0, f.store.project(f.project.ID).AmountFunded)
}

func TestInvestmentService_RejectWithoutReasonChangesNothing(t *testing.T) {
	f := newInvestmentFixture(t, 100000)
	a := f.invest(10000)
	_, err := f.review(t, a.ID, "approve", "")
	require.NoError(t, err)

	_, err = f.review(t, a.ID, "reject", "   ")
	assert.True(t, apperror.IsValidation(err))

	assert.Equal(t, valueobject.ReviewStatusApproved, f.store.investment(a.ID).Status)
	assert.Equal(t, 10000.0, f.store.project(f.project.ID).AmountFunded)
	assert.Equal(t, 1, f.store.reviewCalls)
}

func TestInvestmentService_RejectRevertFloorsAtZero(t *testing.T) {
	f := newInvestmentFixture(t, 1000)
	a := f.invest(800)
	_, err := f.review(t, a.ID, "approve", "")
	require.NoError(t, err)

	// владелец вручную уменьшил собранную сумму
	require.NoError(t, projectRepo{f.store}.mutate(f.project.ID, func(p *models.Project) { p.AmountFunded = 500 }))

	_, err = f.review(t, a.ID, "reject", "возврат средств")
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.store.project(f.project.ID).AmountFunded)
}

func TestInvestmentService_RejectPendingKeepsFunding(t *testing.T) {
	f := newInvestmentFixture(t, 1000)
	a := f.invest(300)
	b := f.invest(200)
	_, err := f.review(t, a.ID, "approve", "")
	require.NoError(t, err)

	_, err = f.review(t, b.ID, "reject", "не прошёл KYC")
	require.NoError(t, err)
	assert.Equal(t, 300.0, f.store.project(f.project.ID).AmountFunded)
}

func TestInvestmentService_UnderReviewClearsStamps(t *testing.T) {
	f := newInvestmentFixture(t, 1000)
	a := f.invest(300)
	_, err := f.review(t, a.ID, "reject", "нужны документы")
	require.NoError(t, err)

	inv, err := f.review(t, a.ID, "under review", "")
	require.NoError(t, err)
	assert.Equal(t, valueobject.ReviewStatusUnderReview, inv.Status)
	assert.Nil(t, inv.RejectionReason)
	assert.Nil(t, inv.AdminApprovedAt)
	assert.Equal(t, 0.0, f.store.project(f.project.ID).AmountFunded)
}

func TestInvestmentService_UnknownAction(t *testing.T) {
	f := newInvestmentFixture(t, 1000)
	a := f.invest(300)

	_, err := f.review(t, a.ID, "refund", "")
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, 0, f.store.reviewCalls)
}

func TestInvestmentService_ReviewNotifiesInvestorAndOwner(t *testing.T) {
	f := newInvestmentFixture(t, 1000)
	a := f.invest(300)

	_, err := f.review(t, a.ID, "approve", "")
	require.NoError(t, err)

	f.notifier.AssertCalled(t, "BroadcastToUser", a.InvestorID, ws.EventInvestmentStatusChanged, mock.Anything)
	f.notifier.AssertCalled(t, "BroadcastToUser", f.project.OwnerID, ws.EventInvestmentStatusChanged, mock.Anything)
}

func TestInvestmentService_ReviewInvalidatesProjectLists(t *testing.T) {
	f := newInvestmentFixture(t, 1000)
	cache := &mockCache{}
	cache.On("Invalidate", projectListKeys).Return()
	f.svc.cache = cache
	a := f.invest(300)

	_, err := f.review(t, a.ID, "approve", "")
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func validInvestmentInput(projectID uuid.UUID) CreateInvestmentInput {
	return CreateInvestmentInput{
		Amount:    5000,
		ProjectID: projectID,
		BankDetails: models.BankDetails{
			AccountNumber:     "001234567890",
			BankName:          "State Bank of India",
			IFSCCode:          "sbin0001234",
			AccountHolderName: "Ravi Kumar",
		},
		PersonalDetails: models.PersonalDetails{
			PANNumber:    "abcde1234f",
			AadharNumber: "2345 6789 0123",
		},
	}
}

func TestInvestmentService_Create(t *testing.T) {
	f := newInvestmentFixture(t, 100000)
	investor := &Principal{ID: uuid.New(), Role: valueobject.RoleUser, Name: "Ravi"}

	inv, err := f.svc.Create(context.Background(), investor, validInvestmentInput(f.project.ID))
	require.NoError(t, err)
	assert.Equal(t, investor.ID, inv.InvestorID)
	assert.Equal(t, valueobject.ReviewStatusPending, inv.Status)
	assert.Equal(t, "SBIN0001234", inv.IFSCCode)
	assert.Equal(t, "ABCDE1234F", inv.PANNumber)
	assert.Equal(t, "234567890123", inv.AadharNumber)
}

func TestInvestmentService_CreateValidation(t *testing.T) {
	f := newInvestmentFixture(t, 100000)
	investor := &Principal{ID: uuid.New(), Role: valueobject.RoleUser}
	ctx := context.Background()

	in := validInvestmentInput(f.project.ID)
	in.Amount = 0
	_, err := f.svc.Create(ctx, investor, in)
	assert.True(t, apperror.IsValidation(err))

	in = validInvestmentInput(f.project.ID)
	in.PersonalDetails.PANNumber = ""
	_, err = f.svc.Create(ctx, investor, in)
	assert.True(t, apperror.IsValidation(err))

	in = validInvestmentInput(f.project.ID)
	in.BankDetails.IFSCCode = "BAD"
	_, err = f.svc.Create(ctx, investor, in)
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.Create(ctx, investor, validInvestmentInput(uuid.New()))
	assert.ErrorIs(t, err, apperror.ErrProjectNotFound)
}

func TestInvestmentService_CreateRequiresApprovedProject(t *testing.T) {
	f := newInvestmentFixture(t, 100000)
	investor := &Principal{ID: uuid.New(), Role: valueobject.RoleUser}

	for _, status := range []valueobject.ReviewStatus{valueobject.ReviewStatusPending, valueobject.ReviewStatusRejected} {
		project := f.store.addProject(models.Project{
			Title:       "Теплица",
			Amount:      50000,
			Status:      valueobject.ProjectStatusInProgress,
			AdminStatus: status,
			OwnerID:     uuid.New(),
		})

		inv, err := f.svc.Create(context.Background(), investor, validInvestmentInput(project.ID))
		assert.Nil(t, inv)
		assert.ErrorIs(t, err, apperror.ErrProjectNotApproved)
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, 400, appErr.HTTPStatus)
	}
	assert.Empty(t, f.store.investments)
}

func TestInvestmentService_ListByInvestorExpandsProject(t *testing.T) {
	f := newInvestmentFixture(t, 100000)
	a := f.invest(1000)
	f.store.users[a.InvestorID] = models.InvestorSummary{Name: "Ravi", Email: "ravi@example.in"}

	views, err := f.svc.ListByInvestor(context.Background(), a.InvestorID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Капельное орошение", views[0].Project.Title)
	assert.Equal(t, "Ravi", views[0].Investor.Name)
}
