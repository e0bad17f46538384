// Package betting valida e registra apostas contra o quote corrente, os
// limites do profile da moeda e o saldo do usuário, alimentando o ledger
// de exposição a cada aposta aceita.
package betting

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/casino-wager-engine/internal/engine/exposure"
	"github.com/radieske/casino-wager-engine/internal/engine/odds"
	"github.com/radieske/casino-wager-engine/internal/engine/profile"
)

// UnitOfWork grava a aposta e debita o saldo do usuário numa única fronteira
// transacional: ou os dois efeitos acontecem, ou nenhum. A implementação real
// abre uma sql.Tx; testes usam fakes em memória.
type UnitOfWork interface {
	PlaceBet(ctx context.Context, bet *Bet) (newBalanceCents int64, err error)
}

// Service é o serviço de colocação de apostas.
type Service struct {
	profiles *profile.Table
	ledger   *exposure.Ledger
	uow      UnitOfWork
	log      *zap.Logger
}

func NewService(profiles *profile.Table, ledger *exposure.Ledger, uow UnitOfWork, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{profiles: profiles, ledger: ledger, uow: uow, log: log}
}

// Place valida e registra uma aposta. Ordem de validação fixa, primeira
// falha vence e nada é mutado. balanceCents é o saldo que o caller enxerga;
// o débito definitivo acontece dentro do UnitOfWork.
func (s *Service) Place(ctx context.Context, userID string, ev odds.Event, q odds.Quote, selection string, stakeCents, balanceCents int64) (*Bet, int64, error) {
	if ev.Status == odds.StatusFinished {
		return nil, 0, ErrEventFinished
	}
	prof, err := s.profiles.For(q.Currency)
	if err != nil {
		return nil, 0, err
	}

	// 1) fundos
	if stakeCents <= 0 || stakeCents > balanceCents {
		return nil, 0, ErrInsufficientFunds
	}
	// 2) limite por usuário
	if stakeCents > prof.MaxBetCents {
		return nil, 0, ErrBetLimitExceeded
	}
	// 3) seleção contra o quote
	selectedOdds, ok := q.SelectionOdds(selection)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s on %s", ErrInvalidSelection, selection, q.Market)
	}

	// 4) payout potencial, com teto: a aposta entra mesmo assim, a odd
	// efetiva é reduzida — é teto de payout, não rejeição
	payoutCents := int64(math.Round(float64(stakeCents) * selectedOdds))
	capped := false
	if payoutCents > prof.MaxPayoutCents {
		selectedOdds = float64(prof.MaxPayoutCents) / float64(stakeCents)
		payoutCents = prof.MaxPayoutCents
		capped = true
	}

	bet := &Bet{
		ID:           uuid.NewString(),
		UserID:       userID,
		EventID:      ev.ID,
		Market:       q.Market,
		Selection:    selection,
		Currency:     q.Currency,
		OddValue:     selectedOdds,
		StakeCents:   stakeCents,
		PayoutCents:  payoutCents,
		PayoutCapped: capped,
		SpreadPoints: q.SpreadPoints,
		TotalPoints:  q.TotalPoints,
		Status:       StatusPending,
		CreatedAt:    time.Now(),
	}

	// 5+6) persiste e debita juntos; só então o ledger de exposição é
	// alimentado (a escrita em memória não falha, então persistir primeiro
	// dispensa lógica de compensação)
	newBalance, err := s.uow.PlaceBet(ctx, bet)
	if err != nil {
		return nil, 0, err
	}

	// exposição registra a stake original, não o payout capado
	s.ledger.Record(ctx, ev.ID, q.Market, q.Currency, selection, stakeCents)

	if capped {
		s.log.Info("bet payout capped",
			zap.String("bet_id", bet.ID),
			zap.Int64("stake_cents", stakeCents),
			zap.Int64("payout_cents", payoutCents),
		)
	}
	return bet, newBalance, nil
}
