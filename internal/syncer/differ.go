package syncer

import (
	"sort"

	"ytshelf/internal/models"
)

// Delta is the membership change between a remote and a local id set.
// Both slices are sorted.
type Delta struct {
	Add    []string
	Remove []string
}

// Diff returns remote minus local as Add and local minus remote as Remove.
// Duplicate ids in either input are ignored. An empty remote yields a Remove
// of everything local, so callers must rule out a failed fetch first.
func Diff(remote, local []string) Delta {
	remoteSet := toSet(remote)
	localSet := toSet(local)

	var d Delta
	for id := range remoteSet {
		if _, ok := localSet[id]; !ok {
			d.Add = append(d.Add, id)
		}
	}
	for id := range localSet {
		if _, ok := remoteSet[id]; !ok {
			d.Remove = append(d.Remove, id)
		}
	}
	sort.Strings(d.Add)
	sort.Strings(d.Remove)
	return d
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// uniqueInOrder drops repeated ids, keeping each id at its first position.
func uniqueInOrder(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// planDelta turns the remote listing and stored membership into the rows to
// write. Positions are 1-based indexes into ordered, the de-duplicated remote
// listing, whatever order the differ reports ids in.
func planDelta(playlistID string, ordered []string, local []models.PlaylistMembership) models.MembershipDelta {
	positions := make(map[string]int, len(ordered))
	for i, id := range ordered {
		positions[id] = i + 1
	}
	localIDs := make([]string, 0, len(local))
	localPos := make(map[string]int, len(local))
	for _, m := range local {
		localIDs = append(localIDs, m.VideoID)
		localPos[m.VideoID] = m.Position
	}

	diff := Diff(ordered, localIDs)
	delta := models.MembershipDelta{PlaylistID: playlistID, Remove: diff.Remove}
	for _, id := range diff.Add {
		delta.Add = append(delta.Add, models.PlaylistMembership{PlaylistID: playlistID, VideoID: id, Position: positions[id]})
	}
	sort.Slice(delta.Add, func(i, j int) bool { return delta.Add[i].Position < delta.Add[j].Position })

	for _, id := range ordered {
		old, ok := localPos[id]
		if ok && old != positions[id] {
			delta.Reposition = append(delta.Reposition, models.PlaylistMembership{PlaylistID: playlistID, VideoID: id, Position: positions[id]})
		}
	}
	return delta
}
