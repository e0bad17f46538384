package exposure

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record acumula o volume apostado por (evento, mercado, moeda).
// OutcomeCents guarda o total por resultado; invariante:
// sum(OutcomeCents) == TotalCents.
type Record struct {
	EventID      string           `json:"event_id"`
	Market       string           `json:"market"`
	Currency     string           `json:"currency"`
	OutcomeCents map[string]int64 `json:"outcome_cents"`
	TotalCents   int64            `json:"total_cents"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Store persiste snapshots de records mutados (ex: Redis).
// A escrita é best-effort: o ledger em memória é a fonte de verdade.
type Store interface {
	Save(ctx context.Context, rec Record) error
}

const stripeCount = 16

type stripe struct {
	mu      sync.Mutex
	records map[string]*Record
}

// Ledger é o estado mutável compartilhado do engine. Uma instância por
// processo, passada por referência para o odds engine e o placement —
// nunca um singleton ambiente.
type Ledger struct {
	stripes [stripeCount]stripe
	store   Store
	log     *zap.Logger
}

// New cria o ledger. store e log são opcionais (nil desabilita flush/logs).
func New(store Store, log *zap.Logger) *Ledger {
	l := &Ledger{store: store, log: log}
	if l.log == nil {
		l.log = zap.NewNop()
	}
	for i := range l.stripes {
		l.stripes[i].records = make(map[string]*Record)
	}
	return l
}

func key(eventID, market, currency string) string {
	return eventID + "|" + market + "|" + currency
}

func (l *Ledger) stripeFor(k string) *stripe {
	h := fnv.New32a()
	_, _ = h.Write([]byte(k))
	return &l.stripes[h.Sum32()%stripeCount]
}

// Record incrementa a exposição de um resultado, criando o registro na
// primeira aposta. Seguro sob chamadas concorrentes para a mesma chave:
// read-modify-write inteiro acontece sob o lock do stripe.
func (l *Ledger) Record(ctx context.Context, eventID, market, currency, outcome string, amountCents int64) Record {
	if amountCents <= 0 {
		panic(fmt.Sprintf("exposure: non-positive amount %d for %s", amountCents, outcome))
	}

	k := key(eventID, market, currency)
	s := l.stripeFor(k)

	s.mu.Lock()
	rec, ok := s.records[k]
	if !ok {
		rec = &Record{
			EventID:      eventID,
			Market:       market,
			Currency:     currency,
			OutcomeCents: make(map[string]int64),
		}
		s.records[k] = rec
	}
	rec.OutcomeCents[outcome] += amountCents
	rec.TotalCents += amountCents
	rec.UpdatedAt = time.Now()

	var sum int64
	for _, v := range rec.OutcomeCents {
		sum += v
	}
	if sum != rec.TotalCents {
		s.mu.Unlock()
		panic(fmt.Sprintf("exposure: ledger out of balance for %s: outcomes=%d total=%d", k, sum, rec.TotalCents))
	}

	snap := copyRecord(rec)
	s.mu.Unlock()

	// flush fora do lock; falha não invalida o estado em memória
	if l.store != nil {
		if err := l.store.Save(ctx, snap); err != nil {
			l.log.Warn("exposure store save failed",
				zap.String("event_id", eventID),
				zap.String("market", market),
				zap.Error(err),
			)
		}
	}
	return snap
}

// For retorna uma cópia do registro (o caller não consegue mutar o ledger
// por fora). ok=false quando ainda não houve aposta na chave.
func (l *Ledger) For(eventID, market, currency string) (Record, bool) {
	k := key(eventID, market, currency)
	s := l.stripeFor(k)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[k]
	if !ok {
		return Record{}, false
	}
	return copyRecord(rec), true
}

// Snapshot devolve uma cópia de todos os registros, para persistência
// ou observabilidade.
func (l *Ledger) Snapshot() []Record {
	var out []Record
	for i := range l.stripes {
		s := &l.stripes[i]
		s.mu.Lock()
		for _, rec := range s.records {
			out = append(out, copyRecord(rec))
		}
		s.mu.Unlock()
	}
	return out
}

// Restore recarrega o ledger a partir de um snapshot (ex: boot do serviço).
// Substitui qualquer estado atual das chaves presentes no snapshot.
func (l *Ledger) Restore(records []Record) {
	for _, rec := range records {
		k := key(rec.EventID, rec.Market, rec.Currency)
		s := l.stripeFor(k)

		cp := copyRecord(&rec)
		s.mu.Lock()
		s.records[k] = &cp
		s.mu.Unlock()
	}
}

func copyRecord(rec *Record) Record {
	cp := *rec
	cp.OutcomeCents = make(map[string]int64, len(rec.OutcomeCents))
	for o, v := range rec.OutcomeCents {
		cp.OutcomeCents[o] = v
	}
	return cp
}
