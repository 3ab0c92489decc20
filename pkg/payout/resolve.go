package payout

import "sort"

// Entry is one recipient entering the distribution step, with its destination
// already resolved.
type Entry struct {
	AdmCode string
	Units   uint64
	Wallet  string
}

// Resolution is the outcome of destination lookup and the unaddressed-funds
// redirect.
type Resolution struct {
	// Addressed recipients proceed to the waterfall, sorted by code.
	Addressed []Entry
	// Unaddressed recipients resolved to NoWallet; their codes keep zero-pool
	// ledgers complete.
	Unaddressed []Entry
	// Carry holds the fixed-amount rows the distributor must honor first.
	Carry []Row
	// RedirectedUSD is the slice of the pool moved off unaddressed units.
	RedirectedUSD float64
}

// Resolve looks up each recipient's destination, then moves the unaddressed
// group's proportional slice of the pool to the configured overflow recipient
// as a fixed carry row. Without an overflow recipient the slice is credited
// to the unallocated pseudo-recipient so the ledger still sums to the pool.
func Resolve(units Units, wallets map[string]string, poolUSD float64, creatorAdmCode string) Resolution {
	codes := make([]string, 0, len(units))
	for code := range units {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var res Resolution
	var unaddressedUnits uint64
	for _, code := range codes {
		entry := Entry{AdmCode: code, Units: units[code]}
		if w, ok := wallets[code]; ok && w != "" {
			entry.Wallet = w
			res.Addressed = append(res.Addressed, entry)
		} else {
			entry.Wallet = NoWallet
			unaddressedUnits += entry.Units
			res.Unaddressed = append(res.Unaddressed, entry)
		}
	}

	totalUnits := units.Total()
	if unaddressedUnits == 0 || totalUnits == 0 || poolUSD <= Epsilon {
		return res
	}

	res.RedirectedUSD = poolUSD * float64(unaddressedUnits) / float64(totalUnits)
	carry := Row{
		Units:     0,
		AmountUSD: res.RedirectedUSD,
		CapReason: ReasonNoWalletRedirect,
	}
	if creatorAdmCode != "" {
		carry.AdmCode = creatorAdmCode
		carry.Wallet = wallets[creatorAdmCode]
	} else {
		carry.AdmCode = UnallocatedCode
	}
	res.Carry = append(res.Carry, carry)
	return res
}
