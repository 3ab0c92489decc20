package payout

import (
	"math"
	"sort"
)

// walletGroup pools every recipient sharing a destination so the per-wallet
// cap applies to the destination, not to each code separately.
type walletGroup struct {
	wallet  string
	units   uint64
	entries []Entry
}

// Distribute allocates poolUSD across the addressed entries. Carry rows are
// paid first at their fixed amounts (clamped to what remains), then the
// remainder is split proportionally by units with a per-wallet cap of
// capPct x poolUSD. The cap base is the pool handed to this step and never
// shrinks between rounds. Capped wallets are settled at exactly the cap and
// removed; the survivors re-split what remains until a round produces no new
// violation. Anything still left is credited to creatorAdmCode, or to the
// unallocated pseudo-recipient when none is configured. The returned rows
// are merged per (code, wallet) and sorted by descending amount.
func Distribute(entries []Entry, poolUSD, capPct float64, carry []Row, creatorAdmCode, creatorWallet string) []Row {
	capUSD := poolUSD * capPct
	poolRemaining := poolUSD
	out := make([]Row, 0, len(entries)+len(carry)+1)

	for _, c := range carry {
		amt := math.Min(poolRemaining, c.AmountUSD)
		c.AmountUSD = amt
		out = append(out, c)
		poolRemaining -= amt
	}

	remaining := groupByWallet(entries)
	for len(remaining) > 0 && poolRemaining > Epsilon {
		var roundUnits uint64
		for _, g := range remaining {
			roundUnits += g.units
		}
		if roundUnits == 0 {
			break
		}

		violated := false
		for _, g := range remaining {
			proposed := poolRemaining * float64(g.units) / float64(roundUnits)
			if proposed > capUSD+Epsilon {
				violated = true
				break
			}
		}

		if !violated {
			for _, g := range remaining {
				for _, e := range g.entries {
					out = append(out, Row{
						AdmCode:   e.AdmCode,
						Wallet:    e.Wallet,
						Units:     e.Units,
						AmountUSD: poolRemaining * float64(e.Units) / float64(roundUnits),
					})
				}
			}
			poolRemaining = 0
			remaining = nil
			break
		}

		next := make([]walletGroup, 0, len(remaining))
		for _, g := range remaining {
			proposed := poolRemaining * float64(g.units) / float64(roundUnits)
			if proposed <= capUSD+Epsilon {
				next = append(next, g)
				continue
			}
			for _, e := range g.entries {
				out = append(out, Row{
					AdmCode:   e.AdmCode,
					Wallet:    e.Wallet,
					Units:     e.Units,
					AmountUSD: capUSD * float64(e.Units) / float64(g.units),
					Capped:    true,
					CapReason: ReasonWalletCap,
				})
			}
			poolRemaining -= capUSD
		}
		remaining = next
	}

	if poolRemaining > Epsilon {
		overflow := Row{Units: 0, AmountUSD: poolRemaining, CapReason: ReasonCreatorOverflow}
		if creatorAdmCode != "" {
			overflow.AdmCode = creatorAdmCode
			overflow.Wallet = creatorWallet
		} else {
			overflow.AdmCode = UnallocatedCode
			overflow.CapReason = ReasonUnallocated
		}
		out = append(out, overflow)
	}

	out = mergeRows(out)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AmountUSD > out[j].AmountUSD
	})
	return out
}

func groupByWallet(entries []Entry) []walletGroup {
	index := make(map[string]int, len(entries))
	groups := make([]walletGroup, 0, len(entries))
	for _, e := range entries {
		i, ok := index[e.Wallet]
		if !ok {
			i = len(groups)
			index[e.Wallet] = i
			groups = append(groups, walletGroup{wallet: e.Wallet})
		}
		groups[i].units += e.Units
		groups[i].entries = append(groups[i].entries, e)
	}
	return groups
}

// mergeRows collapses rows for the same (code, wallet) pair, summing units
// and amounts and keeping the first cap reason seen.
func mergeRows(rows []Row) []Row {
	type key struct{ code, wallet string }
	index := make(map[key]int, len(rows))
	merged := make([]Row, 0, len(rows))
	for _, r := range rows {
		k := key{r.AdmCode, r.Wallet}
		if i, ok := index[k]; ok {
			merged[i].Units += r.Units
			merged[i].AmountUSD += r.AmountUSD
			merged[i].Capped = merged[i].Capped || r.Capped
			if merged[i].CapReason == "" {
				merged[i].CapReason = r.CapReason
			}
			continue
		}
		index[k] = len(merged)
		merged = append(merged, r)
	}
	return merged
}
