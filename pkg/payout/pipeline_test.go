package payout

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func billableEvents(p Period, code string, n int) []Event {
	events := make([]Event, n)
	for i := range events {
		events[i] = Event{
			Ts:       p.Start.Add(time.Duration(i) * time.Minute),
			Type:     "ad_viewable",
			AdmCode:  code,
			Viewable: true,
		}
	}
	return events
}

func TestComputeProportionalSplit(t *testing.T) {
	// Cap set high enough that no wallet binds; small-pool capping is
	// covered by TestComputeSmallPoolCapsEveryWallet.
	cfg := DefaultConfig()
	cfg.WalletCapPct = 1.0
	p := mustPeriod(t, "2026-06")
	events := append(billableEvents(p, "AAA11", 300), billableEvents(p, "BBB22", 100)...)

	ledger := Compute(Input{
		Period:      p,
		Events:      events,
		RevenueUSD:  1000,
		Wallets:     map[string]string{"AAA11": "eth:0xa", "BBB22": "eth:0xb"},
		GeneratedAt: p.End.Add(time.Hour),
	}, cfg)

	require.InDelta(t, 130, ledger.PoolUSD, 1e-9)
	require.Len(t, ledger.Rows, 2)
	require.InDelta(t, 97.5, rowByCode(t, ledger.Rows, "AAA11").AmountUSD, 1e-9)
	require.InDelta(t, 32.5, rowByCode(t, ledger.Rows, "BBB22").AmountUSD, 1e-9)
	require.InDelta(t, 0.75, rowByCode(t, ledger.Rows, "AAA11").Share, 1e-9)
	require.InDelta(t, 0, ledger.ConservationDelta(), 1e-6)
	require.Equal(t, uint64(400), ledger.Meta.TotalUnits)
	require.False(t, ledger.Meta.RampActive)
}

func TestComputeAllUnaddressedBurns(t *testing.T) {
	// No recipient registered a wallet and no overflow recipient is set: the
	// whole pool lands on the unallocated pseudo-recipient.
	cfg := DefaultConfig()
	cfg.CreatorAdmCode = ""
	p := mustPeriod(t, "2026-06")
	events := append(billableEvents(p, "AAA11", 60), billableEvents(p, "BBB22", 40)...)

	ledger := Compute(Input{
		Period:      p,
		Events:      events,
		RevenueUSD:  1000,
		Wallets:     map[string]string{},
		GeneratedAt: p.End,
	}, cfg)

	require.Len(t, ledger.Rows, 1)
	require.Equal(t, UnallocatedCode, ledger.Rows[0].AdmCode)
	require.Equal(t, ReasonNoWalletRedirect, ledger.Rows[0].CapReason)
	require.InDelta(t, 130, ledger.Rows[0].AmountUSD, 1e-9)
	require.InDelta(t, 130, ledger.Meta.RedirectedUSD, 1e-9)
	require.InDelta(t, 0, ledger.ConservationDelta(), 1e-6)
}

func TestComputeRedirectsUnaddressedToCreator(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CreatorAdmCode = "HOUSE"
	cfg.WalletCapPct = 1.0
	p := mustPeriod(t, "2026-06")
	events := append(billableEvents(p, "AAA11", 300), billableEvents(p, "LOST9", 100)...)

	ledger := Compute(Input{
		Period:      p,
		Events:      events,
		RevenueUSD:  1000,
		Wallets:     map[string]string{"AAA11": "eth:0xa", "HOUSE": "eth:0xhouse"},
		GeneratedAt: p.End,
	}, cfg)

	require.Len(t, ledger.Rows, 2)
	house := rowByCode(t, ledger.Rows, "HOUSE")
	require.InDelta(t, 32.5, house.AmountUSD, 1e-9)
	require.Equal(t, ReasonNoWalletRedirect, house.CapReason)
	require.Equal(t, "eth:0xhouse", house.Wallet)
	require.InDelta(t, 97.5, rowByCode(t, ledger.Rows, "AAA11").AmountUSD, 1e-9)
	require.InDelta(t, 32.5, ledger.Meta.RedirectedUSD, 1e-9)
	require.InDelta(t, 0, ledger.ConservationDelta(), 1e-6)
}

func TestComputeCappedWalletsWithOverflow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CreatorAdmCode = "HOUSE"
	p := mustPeriod(t, "2026-06")

	wallets := map[string]string{"HOUSE": "eth:0xhouse"}
	var events []Event
	for i := 0; i < 5; i++ {
		code := fmt.Sprintf("REC%02d", i)
		wallets[code] = fmt.Sprintf("eth:0x%02d", i)
		events = append(events, billableEvents(p, code, 100)...)
	}

	// Revenue large enough to pin the pool at the hard cap.
	ledger := Compute(Input{
		Period:      p,
		Events:      events,
		RevenueUSD:  1_000_000,
		Wallets:     wallets,
		GeneratedAt: p.End,
	}, cfg)

	require.InDelta(t, 10000, ledger.PoolUSD, 1e-9)
	require.Len(t, ledger.Rows, 6)
	for i := 0; i < 5; i++ {
		r := rowByCode(t, ledger.Rows, fmt.Sprintf("REC%02d", i))
		require.True(t, r.Capped)
		require.Equal(t, ReasonWalletCap, r.CapReason)
		require.InDelta(t, 100, r.AmountUSD, 1e-9)
	}
	house := rowByCode(t, ledger.Rows, "HOUSE")
	require.InDelta(t, 9500, house.AmountUSD, 1e-9)
	require.Equal(t, ReasonCreatorOverflow, house.CapReason)
	require.InDelta(t, 0, ledger.ConservationDelta(), 1e-6)
	// Largest amount first.
	require.Equal(t, "HOUSE", ledger.Rows[0].AdmCode)
}

func TestComputeSmallPoolCapsEveryWallet(t *testing.T) {
	// At the production cap fraction a $130 pool caps each wallet at $1.30,
	// so nearly the whole pool ends up on the unallocated row.
	cfg := DefaultConfig()
	p := mustPeriod(t, "2026-06")
	events := append(billableEvents(p, "AAA11", 300), billableEvents(p, "BBB22", 100)...)

	ledger := Compute(Input{
		Period:      p,
		Events:      events,
		RevenueUSD:  1000,
		Wallets:     map[string]string{"AAA11": "eth:0xa", "BBB22": "eth:0xb"},
		GeneratedAt: p.End,
	}, cfg)

	require.InDelta(t, 130, ledger.PoolUSD, 1e-9)
	require.Len(t, ledger.Rows, 3)
	for _, code := range []string{"AAA11", "BBB22"} {
		r := rowByCode(t, ledger.Rows, code)
		require.True(t, r.Capped)
		require.Equal(t, ReasonWalletCap, r.CapReason)
		require.InDelta(t, 1.30, r.AmountUSD, 1e-9)
	}
	leftover := rowByCode(t, ledger.Rows, UnallocatedCode)
	require.Equal(t, ReasonUnallocated, leftover.CapReason)
	require.InDelta(t, 127.40, leftover.AmountUSD, 1e-9)
	require.InDelta(t, 0, ledger.ConservationDelta(), 1e-6)
}

func TestComputeZeroRevenueEmitsZeroRows(t *testing.T) {
	cfg := DefaultConfig()
	p := mustPeriod(t, "2026-06")
	events := append(billableEvents(p, "AAA11", 10), billableEvents(p, "BBB22", 5)...)

	ledger := Compute(Input{
		Period:      p,
		Events:      events,
		RevenueUSD:  0,
		Wallets:     map[string]string{"AAA11": "eth:0xa"},
		GeneratedAt: p.End,
	}, cfg)

	require.Zero(t, ledger.PoolUSD)
	require.Len(t, ledger.Rows, 2)
	for _, r := range ledger.Rows {
		assert.Zero(t, r.AmountUSD)
		assert.Zero(t, r.Share)
		assert.False(t, r.Capped)
	}
	require.Equal(t, "eth:0xa", rowByCode(t, ledger.Rows, "AAA11").Wallet)
	require.Equal(t, NoWallet, rowByCode(t, ledger.Rows, "BBB22").Wallet)
	require.Equal(t, uint64(10), rowByCode(t, ledger.Rows, "AAA11").Units)
}

func TestComputeZeroPayoutPeriodKeepsFullRateFigure(t *testing.T) {
	cfg := DefaultConfig()
	p := mustPeriod(t, "2026-01")
	events := billableEvents(p, "AAA11", 50)

	ledger := Compute(Input{
		Period:      p,
		Events:      events,
		RevenueUSD:  1000,
		Wallets:     map[string]string{"AAA11": "eth:0xa"},
		GeneratedAt: p.End,
	}, cfg)

	require.Zero(t, ledger.PoolUSD)
	require.True(t, ledger.Meta.RampActive)
	require.True(t, ledger.Meta.ZeroPayout)
	require.InDelta(t, 130, ledger.Meta.FullRatePoolUSD, 1e-9)
	require.InDelta(t, 130, ledger.Meta.DivertedUSD, 1e-9)
	require.Len(t, ledger.Rows, 1)
	require.Zero(t, ledger.Rows[0].AmountUSD)
}

func TestComputeNoEventsWithRevenue(t *testing.T) {
	cfg := DefaultConfig()
	p := mustPeriod(t, "2026-06")

	ledger := Compute(Input{
		Period:      p,
		RevenueUSD:  1000,
		Wallets:     map[string]string{},
		GeneratedAt: p.End,
	}, cfg)

	require.InDelta(t, 130, ledger.PoolUSD, 1e-9)
	require.Zero(t, ledger.Meta.TotalUnits)
	require.Len(t, ledger.Rows, 1)
	require.Equal(t, UnallocatedCode, ledger.Rows[0].AdmCode)
	require.InDelta(t, 130, ledger.Rows[0].AmountUSD, 1e-9)
	require.InDelta(t, 0, ledger.ConservationDelta(), 1e-6)
}

func TestComputeIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CreatorAdmCode = "HOUSE"
	p := mustPeriod(t, "2026-06")
	in := Input{
		Period:      p,
		Events:      append(billableEvents(p, "AAA11", 123), billableEvents(p, "LOST9", 7)...),
		RevenueUSD:  4321.99,
		Wallets:     map[string]string{"AAA11": "eth:0xa", "HOUSE": "eth:0xhouse"},
		GeneratedAt: p.End.Add(time.Hour),
	}
	first := Compute(in, cfg)
	second := Compute(in, cfg)
	require.Equal(t, first, second)
}

func TestComputeMonotonicInUnits(t *testing.T) {
	// Uncapped, so extra units must actually grow the amount instead of
	// leaving both runs pinned at the cap.
	cfg := DefaultConfig()
	cfg.WalletCapPct = 1.0
	p := mustPeriod(t, "2026-06")
	wallets := map[string]string{"AAA11": "eth:0xa", "BBB22": "eth:0xb"}

	base := Compute(Input{
		Period:      p,
		Events:      append(billableEvents(p, "AAA11", 100), billableEvents(p, "BBB22", 100)...),
		RevenueUSD:  1000,
		Wallets:     wallets,
		GeneratedAt: p.End,
	}, cfg)
	grown := Compute(Input{
		Period:      p,
		Events:      append(billableEvents(p, "AAA11", 150), billableEvents(p, "BBB22", 100)...),
		RevenueUSD:  1000,
		Wallets:     wallets,
		GeneratedAt: p.End,
	}, cfg)

	require.GreaterOrEqual(t,
		rowByCode(t, grown.Rows, "AAA11").AmountUSD,
		rowByCode(t, base.Rows, "AAA11").AmountUSD)
}
