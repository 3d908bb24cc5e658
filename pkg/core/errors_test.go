package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name                       string
		regions, groups, treasures int
		field                      string
	}{
		{"ok", 10, 3, 3, ""},
		{"groups equal regions", 5, 5, 5, ""},
		{"zero regions", 0, 1, 1, "regions"},
		{"negative regions", -4, 1, 1, "regions"},
		{"zero groups", 10, 0, 1, "groups"},
		{"too many groups", 10, 11, 1, "groups"},
		{"zero treasures", 10, 2, 0, "treasures"},
		{"too many treasures", 10, 2, 11, "treasures"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.regions, tt.groups, tt.treasures)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParams))
			var pe *ParamError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestLongRun(t *testing.T) {
	assert.False(t, LongRun(10, 3))
	assert.False(t, LongRun(100000, 10000))
	assert.True(t, LongRun(1000000, 10000))
	assert.False(t, LongRun(0, 5))
}
