// Package preserve freezes episodes that already shipped in a public feed.
// Editorial systems retroactively edit metadata; once listeners' clients have
// cached an item, silently changing it breaks trust, so the previously
// emitted representation always wins over a re-resolved one.
package preserve

import (
	"sort"

	"podcast-feed-gen/internal/models"
)

// Split partitions the visible episodes against the previous run's snapshot.
// Episodes whose GUID exists in the snapshot come back in frozen form, copied
// from the snapshot with Frozen set; the rest are returned as fresh and still
// need resolution. A nil or empty snapshot marks everything fresh.
func Split(episodes []models.Episode, snapshot map[string]models.Episode) (frozen, fresh []models.Episode) {
	for _, ep := range episodes {
		if stored, ok := snapshot[ep.GUID]; ok {
			stored.Frozen = true
			frozen = append(frozen, stored)
			continue
		}
		ep.Frozen = false
		fresh = append(fresh, ep)
	}
	return frozen, fresh
}

// Merge combines frozen and resolved episodes into final feed order: publish
// timestamp descending, GUID ascending on ties. The order is computed over
// the emitted representations, so a retroactive date edit upstream cannot
// reorder an already-published item.
func Merge(frozen, resolved []models.Episode) []models.Episode {
	merged := make([]models.Episode, 0, len(frozen)+len(resolved))
	merged = append(merged, frozen...)
	merged = append(merged, resolved...)
	Order(merged)
	return merged
}

// Order sorts episodes in place by the final feed ordering rule.
func Order(episodes []models.Episode) {
	sort.SliceStable(episodes, func(i, j int) bool {
		ti, tj := episodes[i].PublishedAt, episodes[j].PublishedAt
		if ti.Equal(tj) {
			return episodes[i].GUID < episodes[j].GUID
		}
		return ti.After(tj)
	})
}
