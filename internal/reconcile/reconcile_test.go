package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vasiliy-maslov/technova/internal/reconcile"
)

func TestUnion(t *testing.T) {
	tests := []struct {
		name          string
		local, remote []string
		wantMerged    []string
		wantLocalOnly []string
	}{
		{
			name:          "overlap",
			local:         []string{"A", "B"},
			remote:        []string{"B", "C"},
			wantMerged:    []string{"B", "C", "A"},
			wantLocalOnly: []string{"A"},
		},
		{
			name:          "empty_local",
			local:         nil,
			remote:        []string{"C"},
			wantMerged:    []string{"C"},
			wantLocalOnly: []string{},
		},
		{
			name:          "empty_remote",
			local:         []string{"A", "A", "B"},
			remote:        nil,
			wantMerged:    []string{"A", "B"},
			wantLocalOnly: []string{"A", "B"},
		},
		{
			name:          "both_empty",
			wantMerged:    []string{},
			wantLocalOnly: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, localOnly := reconcile.Union(tt.local, tt.remote)
			assert.Equal(t, tt.wantMerged, merged)
			assert.Equal(t, tt.wantLocalOnly, localOnly)
		})
	}
}

func TestUnion_Idempotent(t *testing.T) {
	merged, _ := reconcile.Union([]int{1, 2}, []int{2, 3})

	again, localOnly := reconcile.Union(merged, merged)

	assert.Equal(t, merged, again)
	assert.Empty(t, localOnly)
}
