package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

func TestNormalizeText(t *testing.T) {
	got, err := NormalizeText("комментарий", "  нужен проектор \n", MaxNotesLength)
	require.NoError(t, err)
	assert.Equal(t, "нужен проектор", got)

	_, err = NormalizeText("комментарий", "bad\x00text", MaxNotesLength)
	assert.True(t, apperror.IsValidation(err))

	_, err = NormalizeText("причина", strings.Repeat("я", MaxCancelReasonLength+1), MaxCancelReasonLength)
	assert.True(t, apperror.IsValidation(err))

	got, err = NormalizeText("причина", strings.Repeat("я", MaxCancelReasonLength), MaxCancelReasonLength)
	require.NoError(t, err)
	assert.Len(t, []rune(got), MaxCancelReasonLength)
}

func TestValidateBeneficiary(t *testing.T) {
	cases := []struct {
		name    string
		account string
		bank    string
		ok      bool
	}{
		{"valid", "0123456789", "Vietcombank", true},
		{"letters", "01234abc", "Vietcombank", false},
		{"too short", "12345", "Vietcombank", false},
		{"too long", strings.Repeat("1", MaxAccountLength+1), "Vietcombank", false},
		{"no bank", "0123456789", "  ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBeneficiary(tc.account, tc.bank)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.IsValidation(err))
		})
	}
}
