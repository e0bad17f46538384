package betting

import (
	"context"
	"errors"
	"testing"

	"github.com/radieske/casino-wager-engine/internal/engine/exposure"
	"github.com/radieske/casino-wager-engine/internal/engine/odds"
	"github.com/radieske/casino-wager-engine/internal/engine/profile"
)

type fakeUoW struct {
	placed   []*Bet
	balance  int64
	failWith error
}

func (f *fakeUoW) PlaceBet(_ context.Context, bet *Bet) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.placed = append(f.placed, bet)
	f.balance -= bet.StakeCents
	return f.balance, nil
}

func matchQuote(eventID string) odds.Quote {
	return odds.Quote{
		EventID:  eventID,
		Market:   odds.MarketMatchOdds,
		Currency: "GC",
		HomeOdds: 2.10,
		DrawOdds: 3.40,
		AwayOdds: 3.10,
	}
}

func scheduledEvent(id string) odds.Event {
	return odds.Event{ID: id, Status: odds.StatusScheduled}
}

func newTestService(uow UnitOfWork) (*Service, *exposure.Ledger) {
	ledger := exposure.New(nil, nil)
	return NewService(profile.Defaults(), ledger, uow, nil), ledger
}

func TestPlaceHappyPath(t *testing.T) {
	uow := &fakeUoW{balance: 1_000_00}
	svc, ledger := newTestService(uow)

	ev := scheduledEvent("ev-1")
	bet, newBalance, err := svc.Place(context.Background(), "user-1", ev, matchQuote(ev.ID), odds.SelectionHome, 100_00, 1_000_00)
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if bet.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", bet.Status)
	}
	if bet.OddValue != 2.10 {
		t.Errorf("odds not frozen from quote: %v", bet.OddValue)
	}
	if bet.PayoutCents != 210_00 {
		t.Errorf("expected payout 21000, got %d", bet.PayoutCents)
	}
	if bet.PayoutCapped {
		t.Error("payout should not be capped")
	}
	if newBalance != 900_00 {
		t.Errorf("expected balance 90000, got %d", newBalance)
	}

	rec, ok := ledger.For(ev.ID, odds.MarketMatchOdds, "GC")
	if !ok || rec.OutcomeCents[odds.SelectionHome] != 100_00 {
		t.Errorf("exposure not recorded: %+v ok=%v", rec, ok)
	}
}

func TestPlaceValidationOrder(t *testing.T) {
	// stake estoura saldo E limite: fundos vencem (primeira falha)
	uow := &fakeUoW{balance: 50_00}
	svc, ledger := newTestService(uow)

	ev := scheduledEvent("ev-order")
	_, _, err := svc.Place(context.Background(), "user-1", ev, matchQuote(ev.ID), odds.SelectionHome, 5_000_00, 50_00)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds first, got %v", err)
	}
	if len(uow.placed) != 0 {
		t.Error("no bet should be persisted on validation failure")
	}
	if _, ok := ledger.For(ev.ID, odds.MarketMatchOdds, "GC"); ok {
		t.Error("no exposure should be recorded on validation failure")
	}
}

func TestPlaceZeroStake(t *testing.T) {
	svc, _ := newTestService(&fakeUoW{balance: 100_00})

	ev := scheduledEvent("ev-zero")
	_, _, err := svc.Place(context.Background(), "user-1", ev, matchQuote(ev.ID), odds.SelectionHome, 0, 100_00)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestPlaceBetLimitExceeded(t *testing.T) {
	// GC max_bet_cents = 100000; saldo cobre, limite não
	svc, _ := newTestService(&fakeUoW{balance: 10_000_00})

	ev := scheduledEvent("ev-limit")
	_, _, err := svc.Place(context.Background(), "user-1", ev, matchQuote(ev.ID), odds.SelectionHome, 2_000_00, 10_000_00)
	if !errors.Is(err, ErrBetLimitExceeded) {
		t.Fatalf("expected ErrBetLimitExceeded, got %v", err)
	}
}

func TestPlaceInvalidSelection(t *testing.T) {
	svc, _ := newTestService(&fakeUoW{balance: 1_000_00})

	ev := scheduledEvent("ev-sel")
	_, _, err := svc.Place(context.Background(), "user-1", ev, matchQuote(ev.ID), odds.SelectionOver, 100_00, 1_000_00)
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestPlacePayoutCappedExactly(t *testing.T) {
	table, err := profile.NewTable([]profile.Profile{{
		Currency:       "GC",
		HouseEdge:      0.08,
		RiskThreshold:  0.60,
		RTPCap:         0.95,
		MaxPayoutCents: 100_000_00,
		MaxBetCents:    2_000_000_00,
	}})
	if err != nil {
		t.Fatalf("profile table: %v", err)
	}
	uow := &fakeUoW{balance: 2_000_000_00}
	ledger := exposure.New(nil, nil)
	svc := NewService(table, ledger, uow, nil)

	q := matchQuote("ev-cap")
	q.HomeOdds = 50.0

	ev := scheduledEvent("ev-cap")
	bet, _, err := svc.Place(context.Background(), "whale", ev, q, odds.SelectionHome, 1_000_000_00, 2_000_000_00)
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	// 1000000 * 50 daria 50000000; o teto clampa em exatamente 100000
	if bet.PayoutCents != 100_000_00 {
		t.Errorf("expected capped payout 10000000 cents, got %d", bet.PayoutCents)
	}
	if !bet.PayoutCapped {
		t.Error("PayoutCapped should be set")
	}
	if bet.OddValue != float64(100_000_00)/float64(1_000_000_00) {
		t.Errorf("effective odds not recomputed: %v", bet.OddValue)
	}

	// exposição usa a stake original, não o payout capado
	rec, _ := ledger.For(ev.ID, odds.MarketMatchOdds, "GC")
	if rec.OutcomeCents[odds.SelectionHome] != 1_000_000_00 {
		t.Errorf("exposure should record original stake, got %d", rec.OutcomeCents[odds.SelectionHome])
	}
}

func TestPlaceUoWFailureLeavesNoExposure(t *testing.T) {
	boom := errors.New("tx failed")
	svc, ledger := newTestService(&fakeUoW{balance: 1_000_00, failWith: boom})

	ev := scheduledEvent("ev-uow")
	_, _, err := svc.Place(context.Background(), "user-1", ev, matchQuote(ev.ID), odds.SelectionHome, 100_00, 1_000_00)
	if !errors.Is(err, boom) {
		t.Fatalf("expected uow error, got %v", err)
	}
	if _, ok := ledger.For(ev.ID, odds.MarketMatchOdds, "GC"); ok {
		t.Error("exposure must not be recorded when persistence fails")
	}
}

func TestPlaceOnFinishedEvent(t *testing.T) {
	svc, _ := newTestService(&fakeUoW{balance: 1_000_00})

	ev := odds.Event{ID: "ev-done", Status: odds.StatusFinished}
	_, _, err := svc.Place(context.Background(), "user-1", ev, matchQuote(ev.ID), odds.SelectionHome, 100_00, 1_000_00)
	if !errors.Is(err, ErrEventFinished) {
		t.Fatalf("expected ErrEventFinished, got %v", err)
	}
}
