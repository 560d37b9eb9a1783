package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("  Ravi.Kumar@Example.IN "))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("ravi"))
	assert.Error(t, ValidateEmail("ravi@@example.in"))
	assert.Error(t, ValidateEmail("ravi@localhost"))
	assert.Equal(t, "ravi@example.in", NormalizeEmail(" RAVI@example.in"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Farmer2026"))
	assert.Error(t, ValidatePassword("Ab1"))

	err := ValidatePassword("lowercaseonly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "заглавную букву")
	assert.Contains(t, err.Error(), "цифру")
}

func TestProjectFields(t *testing.T) {
	long := make([]rune, MaxProjectTitleLength+1)
	for i := range long {
		long[i] = 'а'
	}
	assert.Error(t, ValidateProjectTitle(string(long)))
	assert.NoError(t, ValidateProjectTitle(string(long[:MaxProjectTitleLength])))
	assert.Error(t, ValidateProjectDescription("   "))
	assert.Error(t, ValidateLocation(""))
}

func TestValidateDeadline(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateDeadline(now.Add(24*time.Hour), now))
	assert.Error(t, ValidateDeadline(now, now))
	assert.Error(t, ValidateDeadline(time.Time{}, now))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-12-31")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())

	_, err = ParseDate("2026-12-31T10:00:00Z")
	assert.NoError(t, err)

	_, err = ParseDate("31.12.2026")
	assert.Error(t, err)
}

func TestKYC(t *testing.T) {
	assert.NoError(t, ValidatePAN("abcde1234f"))
	assert.Error(t, ValidatePAN("ABCD1234F"))

	assert.NoError(t, ValidateIFSC("SBIN0001234"))
	assert.Error(t, ValidateIFSC("SBIN1001234"))

	assert.NoError(t, ValidateAadhar("2345 6789 0123"))
	assert.Error(t, ValidateAadhar("123456789012"))

	assert.NoError(t, ValidateAccountNumber("00123456789"))
	assert.Error(t, ValidateAccountNumber("12AB"))
}

func TestOptionalPhone(t *testing.T) {
	assert.NoError(t, ValidatePhone(nil))
	good := "+91 98765 43210"
	assert.NoError(t, ValidatePhone(&good))
	bad := "call me"
	assert.Error(t, ValidatePhone(&bad))
}

func TestValidateRejectionReason(t *testing.T) {
	assert.Error(t, ValidateRejectionReason("  "))
	assert.NoError(t, ValidateRejectionReason("неполные документы"))
}
