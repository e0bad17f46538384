package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/casino-wager-engine/internal/engine/betting"
)

// Postgres implementa a persistência de apostas, incluindo a fronteira
// transacional de colocação: aposta gravada e saldo debitado juntos.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// PlaceBet implementa betting.UnitOfWork. Insere a aposta PENDING e debita a
// carteira do usuário na mesma transação, com lock pessimista na linha da
// carteira. Nunca existe aposta sem débito correspondente, nem o contrário.
func (p *Postgres) PlaceBet(ctx context.Context, b *betting.Bet) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var walletID string
	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1 AND currency=$2 FOR UPDATE`,
		b.UserID, b.Currency,
	).Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		return 0, betting.ErrInsufficientFunds // sem carteira, sem saldo
	}
	if err != nil {
		return 0, err
	}

	if balance < b.StakeCents {
		return 0, betting.ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents - $1, version = version + 1 WHERE id=$2`,
		b.StakeCents, walletID,
	); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO bets
		  (id, user_id, event_id, market, selection, currency, odd_value,
		   stake_cents, payout_cents, payout_capped, spread_points, total_points, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		b.ID, b.UserID, b.EventID, b.Market, b.Selection, b.Currency, b.OddValue,
		b.StakeCents, b.PayoutCents, b.PayoutCapped, b.SpreadPoints, b.TotalPoints, b.Status, b.CreatedAt,
	); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger (wallet_id, operation_type, amount_cents, description, related_bet_id)
		VALUES ($1,'DEBIT',$2,$3,$4)`,
		walletID, b.StakeCents, "bet:"+b.ID, b.ID,
	); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return balance - b.StakeCents, nil
}

// GetStatus retorna o status atual de uma aposta.
func (p *Postgres) GetStatus(ctx context.Context, betID string) (string, error) {
	var s string
	err := p.db.QueryRowContext(ctx, `SELECT status FROM bets WHERE id=$1`, betID).Scan(&s)
	return s, err
}

// PendingByEvent lista as apostas pendentes de um evento, para liquidação.
func (p *Postgres) PendingByEvent(ctx context.Context, eventID string) ([]betting.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, event_id, market, selection, currency, odd_value,
		       stake_cents, payout_cents, payout_capped, spread_points, total_points, status, created_at
		FROM bets WHERE event_id=$1 AND status=$2`,
		eventID, betting.StatusPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []betting.Bet
	for rows.Next() {
		var b betting.Bet
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.EventID, &b.Market, &b.Selection, &b.Currency, &b.OddValue,
			&b.StakeCents, &b.PayoutCents, &b.PayoutCapped, &b.SpreadPoints, &b.TotalPoints, &b.Status, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Settle grava o desfecho da aposta e credita a carteira (payout em WON,
// estorno em PUSH) na mesma transação. Idempotente: aposta já liquidada
// não é tocada de novo.
func (p *Postgres) Settle(ctx context.Context, betID, status string, creditCents int64) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var userID, currency, current string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, currency, status FROM bets WHERE id=$1 FOR UPDATE`, betID,
	).Scan(&userID, &currency, &current)
	if err != nil {
		return fmt.Errorf("load bet %s: %w", betID, err)
	}
	if current != betting.StatusPending {
		return nil
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE bets SET status=$1, updated_at=NOW() WHERE id=$2`, status, betID,
	); err != nil {
		return err
	}

	if creditCents > 0 {
		var walletID string
		if err = tx.QueryRowContext(ctx,
			`SELECT id FROM wallets WHERE user_id=$1 AND currency=$2 FOR UPDATE`, userID, currency,
		).Scan(&walletID); err != nil {
			return fmt.Errorf("load wallet for bet %s: %w", betID, err)
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`,
			creditCents, walletID,
		); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO wallet_ledger (wallet_id, operation_type, amount_cents, description, related_bet_id)
			VALUES ($1,'CREDIT',$2,$3,$4)`,
			walletID, creditCents, "settle:"+status+":"+betID, betID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}
