package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryLevelRank(t *testing.T) {
	assert.Equal(t, 1, LevelMajor.Rank())
	assert.Equal(t, 2, LevelMedium.Rank())
	assert.Equal(t, 3, LevelSub.Rank())
	assert.Equal(t, 0, CategoryLevel("mega").Rank())
	assert.Equal(t, 0, CategoryLevel("").Rank())
}

func TestGoverningIDPriority(t *testing.T) {
	tests := []struct {
		name     string
		ctx      CategoryContext
		expected string
	}{
		{
			name:     "sub wins over medium and major",
			ctx:      CategoryContext{MajorID: "A1", MediumID: "M1", SubID: "S1"},
			expected: "S1",
		},
		{
			name:     "medium wins over major",
			ctx:      CategoryContext{MajorID: "A1", MediumID: "M1"},
			expected: "M1",
		},
		{
			name:     "major only",
			ctx:      CategoryContext{MajorID: "A1"},
			expected: "A1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ctx.GoverningID())
		})
	}
}
