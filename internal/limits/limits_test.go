package limits

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
)

func TestDefault_IsValid(t *testing.T) {
	l := Default()
	require.NoError(t, l.Validate())
	assert.Equal(t, 1000, l.MaxDepth)
	assert.Equal(t, 1_000_000, l.MaxFiles)
	assert.Equal(t, int64(10*1024*1024), l.MaxFileSize)
	assert.Equal(t, 255, l.MaxPathLength)
	assert.Equal(t, 10_000, l.MaxDocuments)
	assert.Equal(t, 100, l.MaxResults)
}

func TestFreeTier_IsConstrained(t *testing.T) {
	l := FreeTier()
	require.NoError(t, l.Validate())
	assert.Equal(t, 100, l.MaxFiles)
	assert.Equal(t, int64(1024), l.MaxFileSize)
	assert.Equal(t, 100, l.MaxDocuments)
	assert.Equal(t, 1000, l.MaxContentLength)
	assert.Equal(t, Default().MaxDepth, l.MaxDepth)
}

func TestProfile(t *testing.T) {
	tests := []struct {
		name    string
		want    Limits
		wantErr bool
	}{
		{"", Default(), false},
		{"default", Default(), false},
		{"FREE", FreeTier(), false},
		{" free ", FreeTier(), false},
		{"enterprise", Limits{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Profile(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, snaperrors.ErrCodeConfigInvalid, snaperrors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMerge_AppliesNonZeroFields(t *testing.T) {
	merged := Default().Merge(Limits{MaxFiles: 5, MaxDepth: 3})

	assert.Equal(t, 5, merged.MaxFiles)
	assert.Equal(t, 3, merged.MaxDepth)
	assert.Equal(t, Default().MaxDocuments, merged.MaxDocuments)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Limits)
	}{
		{"zero depth", func(l *Limits) { l.MaxDepth = 0 }},
		{"negative files", func(l *Limits) { l.MaxFiles = -1 }},
		{"zero results", func(l *Limits) { l.MaxResults = 0 }},
		{"content over u16", func(l *Limits) { l.MaxContentLength = math.MaxUint16 + 1 }},
		{"path bytes over u16", func(l *Limits) { l.MaxPathBytes = math.MaxUint16 + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Default()
			tt.mutate(&l)
			err := l.Validate()
			require.Error(t, err)
			var se *snaperrors.SnapError
			assert.True(t, errors.As(err, &se))
			assert.Equal(t, snaperrors.CategoryConfig, se.Category)
		})
	}
}
