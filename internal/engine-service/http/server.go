package http

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/casino-wager-engine/internal/engine-service/dto"
	"github.com/radieske/casino-wager-engine/internal/engine-service/eventstore"
	"github.com/radieske/casino-wager-engine/internal/engine/betting"
	"github.com/radieske/casino-wager-engine/internal/engine/exposure"
	"github.com/radieske/casino-wager-engine/internal/engine/odds"
	"github.com/radieske/casino-wager-engine/internal/engine/profile"
	"github.com/radieske/casino-wager-engine/internal/engine/slots"
	walletrepo "github.com/radieske/casino-wager-engine/internal/wallet/repo"
	"github.com/radieske/casino-wager-engine/pkg/contracts/events"
)

// BetRepo é o subconjunto do repositório de apostas usado pelos handlers.
type BetRepo interface {
	GetStatus(ctx context.Context, betID string) (string, error)
}

// Wallet é a interface de carteira usada pelos handlers.
type Wallet interface {
	GetOrCreate(ctx context.Context, userID, currency string) (walletID string, balanceCents int64, err error)
	Deposit(ctx context.Context, userID, currency string, amountCents int64, externalRef string) (int64, error)
	ApplySpin(ctx context.Context, userID, currency string, betCents, winCents int64, externalRef string) (int64, error)
}

// Publisher publica os eventos de domínio do serviço.
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishSpinCompleted(ctx context.Context, e events.SpinCompleted) error
}

// Server expõe a API pública do engine: quotes, apostas, spins e exposição.
type Server struct {
	log      *zap.Logger
	events   *eventstore.Store
	quoter   *odds.Engine
	placer   *betting.Service
	profiles *profile.Table
	machines *slots.Registry
	ledger   *exposure.Ledger
	bets     BetRepo
	wallet   Wallet
	publ     Publisher

	rngMu sync.Mutex
	rng   *rand.Rand

	// callbacks de métricas (counter++), ligadas no main
	OnQuote func()
	OnBet   func(result string)
	OnSpin  func()
}

func NewServer(
	log *zap.Logger,
	store *eventstore.Store,
	quoter *odds.Engine,
	placer *betting.Service,
	profiles *profile.Table,
	machines *slots.Registry,
	ledger *exposure.Ledger,
	bets BetRepo,
	wallet Wallet,
	publ Publisher,
) *Server {
	return &Server{
		log:      log,
		events:   store,
		quoter:   quoter,
		placer:   placer,
		profiles: profiles,
		machines: machines,
		ledger:   ledger,
		bets:     bets,
		wallet:   wallet,
		publ:     publ,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/quotes", s.getQuote)     // GET ?eventId&market&currency
	mux.HandleFunc("/bets", s.placeBet)       // POST
	mux.HandleFunc("/bets/", s.getBetStatus)  // GET /bets/{id}
	mux.HandleFunc("/spins", s.spin)          // POST
	mux.HandleFunc("/exposure", s.getExposure) // GET ?eventId&market&currency
	mux.HandleFunc("/events", s.upsertEvent)  // PUT (feed externo/admin)
	return mux
}

func (s *Server) getQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	eventID, market, currency := q.Get("eventId"), q.Get("market"), q.Get("currency")
	if eventID == "" || market == "" || currency == "" {
		http.Error(w, "eventId, market and currency required", http.StatusBadRequest)
		return
	}

	ev, err := s.events.Get(eventID)
	if err != nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	quote, err := s.quoter.Quote(ev, market, currency)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if s.OnQuote != nil {
		s.OnQuote()
	}
	writeJSON(w, quote)
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.EventID == "" || req.Market == "" || req.Selection == "" || req.Currency == "" || req.StakeCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	ev, err := s.events.Get(req.EventID)
	if err != nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	// re-quota na hora da colocação: o preço reflete o ledger corrente
	quote, err := s.quoter.Quote(ev, req.Market, req.Currency)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, balance, err := s.wallet.GetOrCreate(r.Context(), req.UserID, req.Currency)
	if err != nil {
		http.Error(w, "wallet unavailable", http.StatusInternalServerError)
		return
	}

	bet, newBalance, err := s.placer.Place(r.Context(), req.UserID, ev, quote, req.Selection, req.StakeCents, balance)
	if err != nil {
		s.rejectBet(w, err)
		return
	}

	if s.OnBet != nil {
		s.OnBet("accepted")
	}

	_ = s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
		BetID:           bet.ID,
		UserID:          bet.UserID,
		EventID:         bet.EventID,
		Market:          bet.Market,
		Selection:       bet.Selection,
		Currency:        bet.Currency,
		StakeCents:      bet.StakeCents,
		OddValue:        bet.OddValue,
		PayoutCents:     bet.PayoutCents,
		PayoutCapped:    bet.PayoutCapped,
		NewBalanceCents: newBalance,
	})

	writeJSON(w, dto.PlaceBetResponse{
		BetID:           bet.ID,
		Status:          bet.Status,
		OddValue:        bet.OddValue,
		PayoutCents:     bet.PayoutCents,
		PayoutCapped:    bet.PayoutCapped,
		NewBalanceCents: newBalance,
	})
}

func (s *Server) rejectBet(w http.ResponseWriter, err error) {
	result := "error"
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, betting.ErrInsufficientFunds):
		result, code = "insufficient_funds", http.StatusPaymentRequired
	case errors.Is(err, betting.ErrBetLimitExceeded):
		result, code = "limit_exceeded", http.StatusUnprocessableEntity
	case errors.Is(err, betting.ErrInvalidSelection):
		result, code = "invalid_selection", http.StatusBadRequest
	case errors.Is(err, betting.ErrEventFinished):
		result, code = "event_finished", http.StatusConflict
	}
	if s.OnBet != nil {
		s.OnBet(result)
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) getBetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Path[len("/bets/"):]
	if id == "" {
		http.Error(w, "betId required", http.StatusBadRequest)
		return
	}

	st, err := s.bets.GetStatus(r.Context(), id)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, dto.BetStatusResponse{BetID: id, Status: st})
}

func (s *Server) spin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.SpinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.MachineID == "" || req.Currency == "" || req.BetCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if _, err := s.profiles.For(req.Currency); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	machine, err := s.machines.Machine(req.MachineID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	freeSpin := req.FreeSpins > 0

	s.rngMu.Lock()
	out := slots.Spin(machine, req.BetCents, slots.State{Multiplier: req.Multiplier, FreeSpins: req.FreeSpins}, s.rng)
	s.rngMu.Unlock()

	debit := req.BetCents
	if freeSpin {
		debit = 0
	}
	spinID := uuid.NewString()
	newBalance, err := s.wallet.ApplySpin(r.Context(), req.UserID, req.Currency, debit, out.TotalWinCents, spinID)
	if err != nil {
		if errors.Is(err, walletrepo.ErrInsufficientFunds) {
			http.Error(w, err.Error(), http.StatusPaymentRequired)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if s.OnSpin != nil {
		s.OnSpin()
	}

	remaining := req.FreeSpins
	if freeSpin {
		remaining--
	}
	remaining += out.FreeSpinsAwarded

	multiplier := out.Multiplier
	if remaining == 0 {
		multiplier = 1 // bônus encerrado, zera o carry
	}

	_ = s.publ.PublishSpinCompleted(r.Context(), events.SpinCompleted{
		SpinID:           spinID,
		UserID:           req.UserID,
		MachineID:        req.MachineID,
		Currency:         req.Currency,
		BetCents:         req.BetCents,
		TotalWinCents:    out.TotalWinCents,
		BonusPrizeCents:  out.BonusPrizeCents,
		FreeSpinsAwarded: out.FreeSpinsAwarded,
		Multiplier:       multiplier,
		BonusTriggered:   out.BonusTriggered,
	})

	writeJSON(w, dto.SpinResponse{
		Grid:             out.Grid,
		TotalWinCents:    out.TotalWinCents,
		LineWinCents:     out.LineWinCents,
		BonusPrizeCents:  out.BonusPrizeCents,
		BonusTriggered:   out.BonusTriggered,
		FreeSpinsAwarded: out.FreeSpinsAwarded,
		FreeSpin:         freeSpin,
		Multiplier:       multiplier,
		FreeSpins:        remaining,
		NewBalanceCents:  newBalance,
	})
}

func (s *Server) getExposure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	eventID, market, currency := q.Get("eventId"), q.Get("market"), q.Get("currency")
	if eventID == "" || market == "" || currency == "" {
		http.Error(w, "eventId, market and currency required", http.StatusBadRequest)
		return
	}

	rec, ok := s.ledger.For(eventID, market, currency)
	if !ok {
		// sem aposta ainda: devolve o registro zerado, não é erro
		rec = exposure.Record{EventID: eventID, Market: market, Currency: currency, OutcomeCents: map[string]int64{}}
	}
	writeJSON(w, rec)
}

func (s *Server) upsertEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.UpsertEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.ID == "" || req.HomeTeam == "" || req.AwayTeam == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	switch req.Status {
	case "":
		req.Status = odds.StatusScheduled
	case odds.StatusScheduled, odds.StatusLive, odds.StatusFinished:
	default:
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	ev := odds.Event{
		ID:        req.ID,
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		League:    req.League,
		Status:    req.Status,
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
	}
	if req.StartTime != "" {
		t, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			http.Error(w, "invalid start_time", http.StatusBadRequest)
			return
		}
		ev.StartTime = t
	}
	s.events.Upsert(ev)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
