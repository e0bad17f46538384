package profile

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var ErrUnknownCurrency = errors.New("unknown currency")

// Profile reúne os parâmetros de risco de uma moeda (tier).
// Imutável em runtime; toda requisição seleciona um profile pela moeda.
type Profile struct {
	Currency       string  `yaml:"currency"`
	HouseEdge      float64 `yaml:"house_edge"`      // fração retida pela casa, 0 < x < 1
	RiskThreshold  float64 `yaml:"risk_threshold"`  // fatia de exposição que dispara shading
	RTPCap         float64 `yaml:"rtp_cap"`         // RTP máximo das odds, 0 < x <= 1
	MaxPayoutCents int64   `yaml:"max_payout_cents"`
	MaxBetCents    int64   `yaml:"max_bet_cents"`
}

// Table é a tabela de profiles indexada por moeda. Lookup puro, sem efeitos.
type Table struct {
	byCurrency map[string]Profile
}

// NewTable valida os invariantes de cada profile e monta a tabela.
// Profile inválido é erro de configuração: o serviço não deve subir.
func NewTable(profiles []Profile) (*Table, error) {
	if len(profiles) == 0 {
		return nil, errors.New("no currency profiles configured")
	}
	m := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		if p.Currency == "" {
			return nil, errors.New("profile with empty currency")
		}
		if _, dup := m[p.Currency]; dup {
			return nil, fmt.Errorf("duplicated currency profile: %s", p.Currency)
		}
		if p.HouseEdge <= 0 || p.HouseEdge >= 1 {
			return nil, fmt.Errorf("currency %s: house_edge out of (0,1): %v", p.Currency, p.HouseEdge)
		}
		if p.RTPCap <= 0 || p.RTPCap > 1 {
			return nil, fmt.Errorf("currency %s: rtp_cap out of (0,1]: %v", p.Currency, p.RTPCap)
		}
		if p.RiskThreshold <= 0 || p.RiskThreshold >= 1 {
			return nil, fmt.Errorf("currency %s: risk_threshold out of (0,1): %v", p.Currency, p.RiskThreshold)
		}
		if p.MaxPayoutCents <= 0 || p.MaxBetCents <= 0 {
			return nil, fmt.Errorf("currency %s: limits must be positive", p.Currency)
		}
		m[p.Currency] = p
	}
	return &Table{byCurrency: m}, nil
}

// For retorna o profile da moeda. Moeda desconhecida é erro do caller
// (ValidationError) — os profiles válidos já foram checados na carga.
func (t *Table) For(currency string) (Profile, error) {
	p, ok := t.byCurrency[currency]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, currency)
	}
	return p, nil
}

// Currencies lista as moedas configuradas (para logs de startup).
func (t *Table) Currencies() []string {
	out := make([]string, 0, len(t.byCurrency))
	for c := range t.byCurrency {
		out = append(out, c)
	}
	return out
}

// Defaults retorna os dois tiers padrão: GC (entretenimento) e SC (resgatável).
func Defaults() *Table {
	t, err := NewTable([]Profile{
		{
			Currency:       "GC",
			HouseEdge:      0.08,
			RiskThreshold:  0.60,
			RTPCap:         0.95,
			MaxPayoutCents: 50_000_00,
			MaxBetCents:    1_000_00,
		},
		{
			Currency:       "SC",
			HouseEdge:      0.06,
			RiskThreshold:  0.70,
			RTPCap:         0.92,
			MaxPayoutCents: 100_000_00,
			MaxBetCents:    500_00,
		},
	})
	if err != nil {
		panic(err) // defaults inválidos são erro de programação
	}
	return t
}

type fileSection struct {
	Profiles []Profile `yaml:"currency_profiles"`
}

// LoadYAML monta a tabela a partir da seção currency_profiles de um arquivo
// de configuração do engine. Arquivo sem a seção cai nos defaults.
func LoadYAML(data []byte) (*Table, error) {
	var sec fileSection
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return nil, fmt.Errorf("parse currency profiles: %w", err)
	}
	if len(sec.Profiles) == 0 {
		return Defaults(), nil
	}
	return NewTable(sec.Profiles)
}
