// Package exposurestore persiste snapshots do ledger de exposição num hash
// Redis, para sobreviver a restart do processo. O ledger em memória segue
// sendo a fonte de verdade; o Redis é flush best-effort a cada mutação.
package exposurestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/casino-wager-engine/internal/engine/exposure"
)

const hashKey = "exposure:records"

type Redis struct {
	client *redis.Client
}

func New(c *redis.Client) *Redis { return &Redis{client: c} }

func field(rec exposure.Record) string {
	return rec.EventID + "|" + rec.Market + "|" + rec.Currency
}

// Save grava o snapshot de um registro mutado.
func (r *Redis) Save(ctx context.Context, rec exposure.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, hashKey, field(rec), b).Err()
}

// LoadAll recupera todos os registros persistidos (boot do serviço).
func (r *Redis) LoadAll(ctx context.Context) ([]exposure.Record, error) {
	vals, err := r.client.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load exposure snapshot: %w", err)
	}
	out := make([]exposure.Record, 0, len(vals))
	for f, v := range vals {
		var rec exposure.Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("decode exposure record %s: %w", f, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
