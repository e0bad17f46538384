package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// Postgres implementa operações de carteira por (usuário, moeda).
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// GetOrCreate retorna o walletId e saldo de um usuário numa moeda, criando
// a carteira zerada se não existir.
func (p *Postgres) GetOrCreate(ctx context.Context, userID, currency string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1 AND currency=$2`,
		userID, currency,
	).Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		walletID = uuid.NewString()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets (id, user_id, currency, balance_cents, version) VALUES ($1,$2,$3,0,1)`,
			walletID, userID, currency,
		); err != nil {
			return "", 0, err
		}
		balance = 0
	} else if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return walletID, balance, nil
}

// Deposit credita saldo e registra a operação no ledger da carteira.
func (p *Postgres) Deposit(ctx context.Context, userID, currency string, amountCents int64, externalRef string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var walletID string
	if err = tx.QueryRowContext(ctx,
		`SELECT id FROM wallets WHERE user_id=$1 AND currency=$2 FOR UPDATE`, userID, currency,
	).Scan(&walletID); err != nil {
		return 0, ErrNotFound
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`,
		amountCents, walletID,
	); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger (wallet_id, operation_type, amount_cents, description) VALUES ($1,'CREDIT',$2,$3)`,
		walletID, amountCents, "deposit:"+externalRef,
	); err != nil {
		return 0, err
	}
	if err = tx.QueryRowContext(ctx,
		`SELECT balance_cents FROM wallets WHERE id=$1`, walletID,
	).Scan(&newBalance); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// ApplySpin debita a stake e credita o ganho de um spin numa transação só.
// betCents pode ser zero (free spin). Saldo insuficiente não muta nada.
func (p *Postgres) ApplySpin(ctx context.Context, userID, currency string, betCents, winCents int64, externalRef string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var walletID string
	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1 AND currency=$2 FOR UPDATE`,
		userID, currency,
	).Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		return 0, ErrInsufficientFunds
	}
	if err != nil {
		return 0, err
	}

	if balance < betCents {
		return 0, ErrInsufficientFunds
	}

	delta := winCents - betCents
	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`,
		delta, walletID,
	); err != nil {
		return 0, err
	}

	if betCents > 0 {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallet_ledger (wallet_id, operation_type, amount_cents, description) VALUES ($1,'DEBIT',$2,$3)`,
			walletID, betCents, "spin:"+externalRef,
		); err != nil {
			return 0, err
		}
	}
	if winCents > 0 {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallet_ledger (wallet_id, operation_type, amount_cents, description) VALUES ($1,'CREDIT',$2,$3)`,
			walletID, winCents, "spin-win:"+externalRef,
		); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return balance + delta, nil
}
