package payout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rowSum(rows []Row) float64 {
	var sum float64
	for _, r := range rows {
		sum += r.AmountUSD
	}
	return sum
}

func rowByCode(t *testing.T, rows []Row, code string) Row {
	t.Helper()
	for _, r := range rows {
		if r.AdmCode == code {
			return r
		}
	}
	t.Fatalf("no row for %s", code)
	return Row{}
}

func TestDistributeProportional(t *testing.T) {
	entries := []Entry{
		{AdmCode: "AAA", Units: 300, Wallet: "eth:0xa"},
		{AdmCode: "BBB", Units: 100, Wallet: "eth:0xb"},
	}
	rows := Distribute(entries, 100, 0.9, nil, "", "")
	require.Len(t, rows, 2)
	require.InDelta(t, 75, rowByCode(t, rows, "AAA").AmountUSD, 1e-9)
	require.InDelta(t, 25, rowByCode(t, rows, "BBB").AmountUSD, 1e-9)
	require.InDelta(t, 100, rowSum(rows), 1e-9)
	// Sorted by descending amount.
	require.Equal(t, "AAA", rows[0].AdmCode)
}

func TestDistributeAllWalletsCapped(t *testing.T) {
	entries := make([]Entry, 5)
	for i := range entries {
		entries[i] = Entry{
			AdmCode: string(rune('A' + i)),
			Units:   100,
			Wallet:  "eth:0x" + string(rune('a'+i)),
		}
	}
	rows := Distribute(entries, 10000, 0.01, nil, "", "")
	require.Len(t, rows, 6)

	var capped int
	for _, r := range rows {
		if r.AdmCode == UnallocatedCode {
			continue
		}
		require.True(t, r.Capped)
		require.Equal(t, ReasonWalletCap, r.CapReason)
		require.InDelta(t, 100, r.AmountUSD, 1e-9)
		capped++
	}
	require.Equal(t, 5, capped)

	leftover := rowByCode(t, rows, UnallocatedCode)
	require.InDelta(t, 9500, leftover.AmountUSD, 1e-9)
	require.Equal(t, ReasonUnallocated, leftover.CapReason)
	require.InDelta(t, 10000, rowSum(rows), 1e-9)
}

func TestDistributeOverflowGoesToCreator(t *testing.T) {
	entries := []Entry{{AdmCode: "AAA", Units: 100, Wallet: "eth:0xa"}}
	rows := Distribute(entries, 10000, 0.01, nil, "HOUSE", "eth:0xhouse")
	require.Len(t, rows, 2)

	overflow := rowByCode(t, rows, "HOUSE")
	require.InDelta(t, 9900, overflow.AmountUSD, 1e-9)
	require.Equal(t, ReasonCreatorOverflow, overflow.CapReason)
	require.Equal(t, "eth:0xhouse", overflow.Wallet)
	require.InDelta(t, 10000, rowSum(rows), 1e-9)
}

func TestDistributeWaterfallResplitsAfterCap(t *testing.T) {
	// One whale plus two small recipients. The whale hits the cap in round
	// one; the remainder re-splits between the survivors, who stay under it.
	entries := []Entry{
		{AdmCode: "WHALE", Units: 9800, Wallet: "eth:0xw"},
		{AdmCode: "SM1", Units: 100, Wallet: "eth:0x1"},
		{AdmCode: "SM2", Units: 100, Wallet: "eth:0x2"},
	}
	rows := Distribute(entries, 1000, 0.5, nil, "", "")
	require.Len(t, rows, 3)

	whale := rowByCode(t, rows, "WHALE")
	require.True(t, whale.Capped)
	require.InDelta(t, 500, whale.AmountUSD, 1e-9)

	// Remaining 500 split evenly across the two survivors.
	require.InDelta(t, 250, rowByCode(t, rows, "SM1").AmountUSD, 1e-9)
	require.InDelta(t, 250, rowByCode(t, rows, "SM2").AmountUSD, 1e-9)
	require.InDelta(t, 1000, rowSum(rows), 1e-9)
}

func TestDistributeCapAppliesPerWallet(t *testing.T) {
	// Two codes share one wallet; the cap binds their combined payout.
	entries := []Entry{
		{AdmCode: "AAA", Units: 400, Wallet: "eth:0xshared"},
		{AdmCode: "BBB", Units: 400, Wallet: "eth:0xshared"},
		{AdmCode: "CCC", Units: 200, Wallet: "eth:0xc"},
	}
	rows := Distribute(entries, 1000, 0.5, nil, "", "")

	a := rowByCode(t, rows, "AAA")
	b := rowByCode(t, rows, "BBB")
	require.True(t, a.Capped)
	require.True(t, b.Capped)
	// Cap of 500 split by units within the wallet group.
	require.InDelta(t, 250, a.AmountUSD, 1e-9)
	require.InDelta(t, 250, b.AmountUSD, 1e-9)
	require.InDelta(t, 500, rowByCode(t, rows, "CCC").AmountUSD, 1e-9)
	require.False(t, rowByCode(t, rows, "CCC").Capped)
	require.InDelta(t, 1000, rowSum(rows), 1e-9)
}

func TestDistributeCarryPaidFirst(t *testing.T) {
	carry := []Row{{
		AdmCode:   "HOUSE",
		Wallet:    "eth:0xhouse",
		AmountUSD: 40,
		CapReason: ReasonNoWalletRedirect,
	}}
	entries := []Entry{{AdmCode: "AAA", Units: 10, Wallet: "eth:0xa"}}
	rows := Distribute(entries, 100, 0.9, carry, "HOUSE", "eth:0xhouse")
	require.Len(t, rows, 2)

	house := rowByCode(t, rows, "HOUSE")
	require.InDelta(t, 40, house.AmountUSD, 1e-9)
	require.Equal(t, ReasonNoWalletRedirect, house.CapReason)
	require.InDelta(t, 60, rowByCode(t, rows, "AAA").AmountUSD, 1e-9)
	require.InDelta(t, 100, rowSum(rows), 1e-9)
}

func TestDistributeCarryClampedToPool(t *testing.T) {
	carry := []Row{{AdmCode: "HOUSE", AmountUSD: 150, CapReason: ReasonNoWalletRedirect}}
	rows := Distribute(nil, 100, 0.9, carry, "HOUSE", "")
	require.Len(t, rows, 1)
	require.InDelta(t, 100, rows[0].AmountUSD, 1e-9)
}

func TestDistributeMergesDuplicatePairs(t *testing.T) {
	carry := []Row{{
		AdmCode:   "AAA",
		Wallet:    "eth:0xa",
		AmountUSD: 30,
		CapReason: ReasonNoWalletRedirect,
	}}
	entries := []Entry{{AdmCode: "AAA", Units: 10, Wallet: "eth:0xa"}}
	rows := Distribute(entries, 100, 0.9, carry, "", "")
	require.Len(t, rows, 1)
	require.InDelta(t, 100, rows[0].AmountUSD, 1e-9)
	require.Equal(t, uint64(10), rows[0].Units)
	require.Equal(t, ReasonNoWalletRedirect, rows[0].CapReason)
}

func TestDistributeNoEntriesNoCreator(t *testing.T) {
	rows := Distribute(nil, 500, 0.01, nil, "", "")
	require.Len(t, rows, 1)
	require.Equal(t, UnallocatedCode, rows[0].AdmCode)
	require.Equal(t, ReasonUnallocated, rows[0].CapReason)
	require.InDelta(t, 500, rows[0].AmountUSD, 1e-9)
}
