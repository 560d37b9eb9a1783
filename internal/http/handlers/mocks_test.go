package handlers

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/http/middleware"
	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestEngine собирает движок с ErrorHandler; principal, если задан, кладётся в контекст
// так же, как это делает AuthMiddleware.
func newTestEngine(principal *service.Principal) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	if principal != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextPrincipalKey, principal)
			c.Next()
		})
	}
	return r
}

func userPrincipal() *service.Principal {
	return &service.Principal{ID: uuid.New(), Role: valueobject.RoleUser, Name: "Meera"}
}

func adminPrincipal() *service.Principal {
	return &service.Principal{ID: uuid.New(), Role: valueobject.RoleAdmin, Name: "admin"}
}

type mockProjectService struct {
	mock.Mock
}

func (m *mockProjectService) Create(ctx context.Context, actor *service.Principal, in service.CreateProjectInput) (*models.Project, error) {
	args := m.Called(actor, in)
	return projectArg(args, 0), args.Error(1)
}

func (m *mockProjectService) Update(ctx context.Context, actor *service.Principal, id uuid.UUID, in service.UpdateProjectInput) (*models.Project, error) {
	args := m.Called(actor, id, in)
	return projectArg(args, 0), args.Error(1)
}

func (m *mockProjectService) Delete(ctx context.Context, actor *service.Principal, id uuid.UUID) error {
	return m.Called(actor, id).Error(0)
}

func (m *mockProjectService) SetStatus(ctx context.Context, actor *service.Principal, id uuid.UUID, status string) (*models.Project, error) {
	args := m.Called(actor, id, status)
	return projectArg(args, 0), args.Error(1)
}

func (m *mockProjectService) UpdateNotes(ctx context.Context, actor *service.Principal, id uuid.UUID, notes string) (*models.Project, error) {
	args := m.Called(actor, id, notes)
	return projectArg(args, 0), args.Error(1)
}

func (m *mockProjectService) UpdateFundDetails(ctx context.Context, actor *service.Principal, id uuid.UUID, in []service.FundDetailInput) (*models.Project, error) {
	args := m.Called(actor, id, in)
	return projectArg(args, 0), args.Error(1)
}

func (m *mockProjectService) Review(ctx context.Context, actor *service.Principal, id uuid.UUID, in service.ReviewProjectInput) (*models.Project, error) {
	args := m.Called(actor, id, in)
	return projectArg(args, 0), args.Error(1)
}

func (m *mockProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(id)
	return projectArg(args, 0), args.Error(1)
}

func (m *mockProjectService) Progress(ctx context.Context, id uuid.UUID) (*models.ProjectProgress, error) {
	args := m.Called(id)
	progress, _ := args.Get(0).(*models.ProjectProgress)
	return progress, args.Error(1)
}

func (m *mockProjectService) ListAll(ctx context.Context) ([]models.Project, error) {
	args := m.Called()
	return projectsArg(args), args.Error(1)
}

func (m *mockProjectService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ownerID)
	return projectsArg(args), args.Error(1)
}

func (m *mockProjectService) ListApproved(ctx context.Context) ([]models.Project, error) {
	args := m.Called()
	return projectsArg(args), args.Error(1)
}

func (m *mockProjectService) ListOpen(ctx context.Context) ([]models.Project, error) {
	args := m.Called()
	return projectsArg(args), args.Error(1)
}

func (m *mockProjectService) Stats(ctx context.Context) (*models.ProjectStats, error) {
	args := m.Called()
	stats, _ := args.Get(0).(*models.ProjectStats)
	return stats, args.Error(1)
}

func projectArg(args mock.Arguments, i int) *models.Project {
	p, _ := args.Get(i).(*models.Project)
	return p
}

func projectsArg(args mock.Arguments) []models.Project {
	list, _ := args.Get(0).([]models.Project)
	return list
}

type mockInvestmentService struct {
	mock.Mock
}

func (m *mockInvestmentService) Create(ctx context.Context, actor *service.Principal, in service.CreateInvestmentInput) (*models.Investment, error) {
	args := m.Called(actor, in)
	inv, _ := args.Get(0).(*models.Investment)
	return inv, args.Error(1)
}

func (m *mockInvestmentService) Review(ctx context.Context, actor *service.Principal, id uuid.UUID, in service.ReviewInvestmentInput) (*models.Investment, error) {
	args := m.Called(actor, id, in)
	inv, _ := args.Get(0).(*models.Investment)
	return inv, args.Error(1)
}

func (m *mockInvestmentService) ListAll(ctx context.Context) ([]models.InvestmentView, error) {
	args := m.Called()
	views, _ := args.Get(0).([]models.InvestmentView)
	return views, args.Error(1)
}

func (m *mockInvestmentService) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]models.InvestmentView, error) {
	args := m.Called(investorID)
	views, _ := args.Get(0).([]models.InvestmentView)
	return views, args.Error(1)
}

func (m *mockInvestmentService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.InvestmentView, error) {
	args := m.Called(projectID)
	views, _ := args.Get(0).([]models.InvestmentView)
	return views, args.Error(1)
}

type mockExporter struct {
	mock.Mock
}

func (m *mockExporter) WriteInvestments(ctx context.Context, w io.Writer) error {
	args := m.Called()
	if body, ok := args.Get(0).(string); ok {
		_, _ = io.WriteString(w, body)
	}
	return args.Error(1)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) CreateUser(ctx context.Context, in service.CreateUserInput) (*models.User, error) {
	args := m.Called(in)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockAuthService) LoginUser(ctx context.Context, email, password string) (*service.UserAuthResult, error) {
	args := m.Called(email, password)
	res, _ := args.Get(0).(*service.UserAuthResult)
	return res, args.Error(1)
}

func (m *mockAuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockAuthService) CreateInvestor(ctx context.Context, in service.CreateInvestorInput) (*models.Investor, error) {
	args := m.Called(in)
	investor, _ := args.Get(0).(*models.Investor)
	return investor, args.Error(1)
}

func (m *mockAuthService) LoginInvestor(ctx context.Context, email, password string) (*service.InvestorAuthResult, error) {
	args := m.Called(email, password)
	res, _ := args.Get(0).(*service.InvestorAuthResult)
	return res, args.Error(1)
}

func (m *mockAuthService) LoginAdmin(username, password string) (*service.AccessToken, error) {
	args := m.Called(username, password)
	token, _ := args.Get(0).(*service.AccessToken)
	return token, args.Error(1)
}

type mockContactService struct {
	mock.Mock
}

func (m *mockContactService) Submit(ctx context.Context, in service.SubmitContactInput) (*models.Contact, error) {
	args := m.Called(in)
	contact, _ := args.Get(0).(*models.Contact)
	return contact, args.Error(1)
}

func (m *mockContactService) ListAll(ctx context.Context) ([]models.Contact, error) {
	args := m.Called()
	contacts, _ := args.Get(0).([]models.Contact)
	return contacts, args.Error(1)
}

func (m *mockContactService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Contact, error) {
	args := m.Called(id, status)
	contact, _ := args.Get(0).(*models.Contact)
	return contact, args.Error(1)
}
