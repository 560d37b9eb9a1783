package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/ruralfund-backend/internal/dto"
	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/service"
)

func TestInvestmentHandler_CreateMapsBody(t *testing.T) {
	actor := userPrincipal()
	projectID := uuid.New()
	svc := &mockInvestmentService{}
	svc.On("Create", actor, mock.MatchedBy(func(in service.CreateInvestmentInput) bool {
		return in.ProjectID == projectID &&
			in.Amount == 2500 &&
			in.BankDetails.IFSCCode == "SBIN0001234" &&
			in.PersonalDetails.PANNumber == "ABCDE1234F"
	})).Return(&models.Investment{ID: uuid.New(), ProjectID: projectID, InvestorID: actor.ID}, nil)

	r := newTestEngine(actor)
	r.POST("/investments/create", NewInvestmentHandler(svc, &mockProjectService{}, &mockExporter{}).Create)

	payload := `{"amount":2500,"projectId":"` + projectID.String() + `",
		"bankDetails":{"accountNumber":"00123456","bankName":"SBI","ifscCode":"SBIN0001234","accountHolderName":"Meera"},
		"personalDetails":{"panNumber":"ABCDE1234F","aadharNumber":"234567890123"}}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/investments/create", strings.NewReader(payload)))

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}

func TestInvestmentHandler_ReviewAlreadyApproved(t *testing.T) {
	actor := adminPrincipal()
	id := uuid.New()
	svc := &mockInvestmentService{}
	svc.On("Review", actor, id, service.ReviewInvestmentInput{Action: "approve"}).
		Return(nil, apperror.ErrInvestmentAlreadyApproved)

	r := newTestEngine(actor)
	r.PUT("/investments/admin/:id", NewInvestmentHandler(svc, &mockProjectService{}, &mockExporter{}).Review)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/investments/admin/"+id.String(), jsonBody(t, dto.ReviewRequest{Action: "approve"})))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "инвестиция уже одобрена")
}

func TestInvestmentHandler_ReviewRequiresAction(t *testing.T) {
	r := newTestEngine(adminPrincipal())
	svc := &mockInvestmentService{}
	r.PUT("/investments/admin/:id", NewInvestmentHandler(svc, &mockProjectService{}, &mockExporter{}).Review)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/investments/admin/"+uuid.NewString(), strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Review", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvestmentHandler_ListByProjectOwnerOnly(t *testing.T) {
	owner := userPrincipal()
	projectID := uuid.New()
	projects := &mockProjectService{}
	projects.On("Get", projectID).Return(&models.Project{ID: projectID, OwnerID: owner.ID}, nil)
	svc := &mockInvestmentService{}
	svc.On("ListByProject", projectID).Return([]models.InvestmentView{}, nil)

	h := NewInvestmentHandler(svc, projects, &mockExporter{})

	r := newTestEngine(owner)
	r.GET("/investments/project/:id", h.ListByProject)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/investments/project/"+projectID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	stranger := newTestEngine(userPrincipal())
	stranger.GET("/investments/project/:id", h.ListByProject)
	w = httptest.NewRecorder()
	stranger.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/investments/project/"+projectID.String(), nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	svc.AssertNumberOfCalls(t, "ListByProject", 1)
}

func TestInvestmentHandler_ListByInvestorAdmin(t *testing.T) {
	investorID := uuid.New()
	svc := &mockInvestmentService{}
	svc.On("ListByInvestor", investorID).Return([]models.InvestmentView{{Investment: models.Investment{InvestorID: investorID}}}, nil)

	r := newTestEngine(adminPrincipal())
	r.GET("/investments/investor/:id", NewInvestmentHandler(svc, &mockProjectService{}, &mockExporter{}).ListByInvestor)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/investments/investor/"+investorID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"investor":`)
}

func TestInvestmentHandler_Export(t *testing.T) {
	exporter := &mockExporter{}
	exporter.On("WriteInvestments").Return("xlsx-bytes", nil)

	h := NewInvestmentHandler(&mockInvestmentService{}, &mockProjectService{}, exporter)
	h.now = func() time.Time { return time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC) }

	r := newTestEngine(adminPrincipal())
	r.GET("/investments/admin/export", h.Export)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/investments/admin/export", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "investments-20260402.xlsx")
	assert.Equal(t, "xlsx-bytes", w.Body.String())
}

func TestInvestmentHandler_ExportFailureIsMasked(t *testing.T) {
	exporter := &mockExporter{}
	exporter.On("WriteInvestments").Return(nil, errors.New("pq: relation does not exist"))

	r := newTestEngine(adminPrincipal())
	r.GET("/investments/admin/export", NewInvestmentHandler(&mockInvestmentService{}, &mockProjectService{}, exporter).Export)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/investments/admin/export", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.NotContains(t, w.Body.String(), "pq:")
}
