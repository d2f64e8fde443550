package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ytshelf/internal/models"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name   string
		remote []string
		local  []string
		want   Delta
	}{
		{
			name:   "add and remove",
			remote: []string{"A", "B", "C"},
			local:  []string{"A", "D"},
			want:   Delta{Add: []string{"B", "C"}, Remove: []string{"D"}},
		},
		{
			name:   "identical",
			remote: []string{"B", "A"},
			local:  []string{"A", "B"},
			want:   Delta{},
		},
		{
			name:   "empty remote removes everything",
			remote: nil,
			local:  []string{"B", "A"},
			want:   Delta{Remove: []string{"A", "B"}},
		},
		{
			name:   "empty local adds everything",
			remote: []string{"C", "A", "C"},
			local:  nil,
			want:   Delta{Add: []string{"A", "C"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(tt.remote, tt.local))
		})
	}
}

func TestUniqueInOrder(t *testing.T) {
	assert.Equal(t, []string{"C", "A", "B"}, uniqueInOrder([]string{"C", "A", "C", "B", "A"}))
	assert.Empty(t, uniqueInOrder(nil))
}

func TestPlanDeltaUsesRemotePositions(t *testing.T) {
	local := []models.PlaylistMembership{
		{PlaylistID: "PL", VideoID: "A", Position: 1},
		{PlaylistID: "PL", VideoID: "B", Position: 2},
		{PlaylistID: "PL", VideoID: "C", Position: 3},
	}
	ordered := []string{"D", "C", "A", "E"}

	delta := planDelta("PL", ordered, local)

	assert.Equal(t, "PL", delta.PlaylistID)
	assert.Equal(t, []models.PlaylistMembership{
		{PlaylistID: "PL", VideoID: "D", Position: 1},
		{PlaylistID: "PL", VideoID: "E", Position: 4},
	}, delta.Add)
	assert.Equal(t, []models.PlaylistMembership{
		{PlaylistID: "PL", VideoID: "C", Position: 2},
		{PlaylistID: "PL", VideoID: "A", Position: 3},
	}, delta.Reposition)
	assert.Equal(t, []string{"B"}, delta.Remove)
	assert.False(t, delta.Empty())
}

func TestPlanDeltaUnchanged(t *testing.T) {
	local := []models.PlaylistMembership{
		{PlaylistID: "PL", VideoID: "A", Position: 1},
		{PlaylistID: "PL", VideoID: "B", Position: 2},
	}

	assert.True(t, planDelta("PL", []string{"A", "B"}, local).Empty())
}
