package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
)

func TestInvestment_ApproveTwice(t *testing.T) {
	inv := &Investment{Status: valueobject.ReviewStatusPending}
	now := time.Now()

	require.NoError(t, inv.Approve("admin", now))
	assert.Equal(t, valueobject.ReviewStatusApproved, inv.Status)
	assert.Equal(t, "admin", *inv.AdminApprovedBy)

	err := inv.Approve("admin", now)
	assert.ErrorIs(t, err, apperror.ErrInvestmentAlreadyApproved)
}

func TestInvestment_RejectClearsApproval(t *testing.T) {
	inv := &Investment{Status: valueobject.ReviewStatusPending}
	require.NoError(t, inv.Approve("admin", time.Now()))

	wasApproved := inv.Reject("неверный PAN")
	assert.True(t, wasApproved)
	assert.Nil(t, inv.AdminApprovedAt)
	assert.Nil(t, inv.AdminApprovedBy)
	assert.Equal(t, "неверный PAN", *inv.RejectionReason)

	assert.False(t, inv.Reject("ещё раз"))
}

func TestInvestment_MarkUnderReview(t *testing.T) {
	reason := "x"
	inv := &Investment{Status: valueobject.ReviewStatusRejected, RejectionReason: &reason}

	inv.MarkUnderReview()
	assert.Equal(t, valueobject.ReviewStatusUnderReview, inv.Status)
	assert.Nil(t, inv.RejectionReason)
}

func TestInvestmentView_JSONNestsDetails(t *testing.T) {
	view := InvestmentView{
		Investment: Investment{
			Amount:          100,
			BankDetails:     BankDetails{IFSCCode: "SBIN0001234"},
			PersonalDetails: PersonalDetails{PANNumber: "ABCDE1234F"},
		},
		Project:  ProjectSummary{Title: "Теплица"},
		Investor: InvestorSummary{Name: "Ravi"},
	}

	raw, err := json.Marshal(view)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "SBIN0001234", decoded["bankDetails"].(map[string]interface{})["ifscCode"])
	assert.Equal(t, "ABCDE1234F", decoded["personalDetails"].(map[string]interface{})["panNumber"])
	assert.Equal(t, "Теплица", decoded["project"].(map[string]interface{})["title"])
	assert.Equal(t, "Ravi", decoded["investor"].(map[string]interface{})["name"])
}

func TestContact_SetStatus(t *testing.T) {
	c := &Contact{Status: valueobject.ContactStatusNew}
	now := time.Now()

	c.SetStatus(valueobject.ContactStatusResolved, now)
	require.NotNil(t, c.ResolvedAt)

	c.SetStatus(valueobject.ContactStatusInProgress, now)
	assert.Nil(t, c.ResolvedAt)
}
