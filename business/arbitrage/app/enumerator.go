package app

import (
	"sort"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	marketDomain "github.com/fd1az/triarb/business/market/domain"
)

// FindCycles enumerates closed three-pool cycles for each venue, in the
// order given. An empty list selects every venue in the snapshot. Listing
// domain.FederatedVenue enumerates once over the union of the selected
// venues' pools instead. Each token set is emitted once per venue; federated
// enumeration emits every closed combination so cross-venue mixes of the
// same token set can be priced against each other.
func FindCycles(snap *marketDomain.Snapshot, venues []string) []domain.Cycle {
	federated := false
	selected := make([]string, 0, len(venues))
	for _, v := range venues {
		if v == domain.FederatedVenue {
			federated = true
			continue
		}
		selected = append(selected, v)
	}
	if len(selected) == 0 {
		selected = snap.Venues()
	}

	if federated {
		var pools []marketDomain.Pool
		for _, v := range selected {
			pools = append(pools, snap.Pools(v)...)
		}
		sort.Slice(pools, func(i, j int) bool { return pools[i].ID < pools[j].ID })
		return enumerate(domain.FederatedVenue, pools, false)
	}

	var cycles []domain.Cycle
	for _, v := range selected {
		cycles = append(cycles, enumerate(v, snap.Pools(v), true)...)
	}
	return cycles
}

// enumerate examines every unordered triple of pools in slice order. With
// dedup set, only the first triple per token set is kept.
func enumerate(venue string, pools []marketDomain.Pool, dedup bool) []domain.Cycle {
	n := len(pools)
	if n < 3 {
		return nil
	}

	var cycles []domain.Cycle
	seen := make(map[string]bool)
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				triple := [3]marketDomain.Pool{pools[i], pools[j], pools[k]}
				if !domain.IsClosed(triple) {
					continue
				}
				c := domain.Cycle{Venue: venue, Pools: triple}
				if dedup {
					key := c.Key()
					if seen[key] {
						continue
					}
					seen[key] = true
				}
				cycles = append(cycles, c)
			}
		}
	}
	return cycles
}
