package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/invoicebox/backend/models"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "strong", password: "Correct-Horse-9", valid: true},
		{name: "too short", password: "Ab1!", valid: false},
		{name: "no upper case", password: "correct-horse-9", valid: false},
		{name: "no lower case", password: "CORRECT-HORSE-9", valid: false},
		{name: "no digit", password: "Correct-Horse-X", valid: false},
		{name: "no special character", password: "CorrectHorse9", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, models.BadParameterError)
			}
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("Correct-Horse-9")
	assert.NoError(t, err)
	assert.True(t, PasswordMatches(hash, "Correct-Horse-9"))
	assert.False(t, PasswordMatches(hash, "correct-horse-9"))
}
