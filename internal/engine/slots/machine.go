package slots

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var ErrUnknownMachine = errors.New("unknown slot machine")

// Features opcionais de uma máquina.
const (
	FeatureFreeSpins   = "free_spins"
	FeatureMultipliers = "multipliers"
	FeatureBonusGame   = "bonus_game"
)

const defaultBonusMultiplier = 10

// Symbol é um símbolo da bobina com seu peso de sorteio.
type Symbol struct {
	Name   string `yaml:"name"`
	Weight int    `yaml:"weight"`
}

// Machine é a configuração estática de uma máquina de slot, carregada uma
// vez no boot. Paytable mapeia símbolo -> N iguais -> multiplicador da stake.
type Machine struct {
	ID              string                     `yaml:"id"`
	Reels           int                        `yaml:"reels"`
	Rows            int                        `yaml:"rows"`
	Symbols         []Symbol                   `yaml:"symbols"`
	Paytable        map[string]map[int]float64 `yaml:"paytable"`
	WildSymbol      string                     `yaml:"wild_symbol"`
	ScatterSymbol   string                     `yaml:"scatter_symbol"`
	BonusSymbol     string                     `yaml:"bonus_symbol"`
	RTPTarget       float64                    `yaml:"rtp_target"`      // percentual, ex: 95
	BonusFrequency  float64                    `yaml:"bonus_frequency"` // % de chance por spin
	BonusMultiplier float64                    `yaml:"bonus_multiplier"`
	Features        []string                   `yaml:"features"`
}

func (m *Machine) HasFeature(name string) bool {
	for _, f := range m.Features {
		if f == name {
			return true
		}
	}
	return false
}

func (m *Machine) bonusPrizeMultiplier() float64 {
	if m.BonusMultiplier > 0 {
		return m.BonusMultiplier
	}
	return defaultBonusMultiplier
}

func (m *Machine) totalWeight() int {
	total := 0
	for _, s := range m.Symbols {
		total += s.Weight
	}
	return total
}

// Validate confere os invariantes de configuração. Máquina inválida é erro
// fatal de startup, nunca um caso de runtime.
func (m *Machine) Validate() error {
	if m.ID == "" {
		return errors.New("machine with empty id")
	}
	if m.Reels < 1 || m.Rows < 1 {
		return fmt.Errorf("machine %s: reels/rows must be >= 1", m.ID)
	}
	if len(m.Symbols) == 0 {
		return fmt.Errorf("machine %s: no symbols", m.ID)
	}
	names := make(map[string]bool, len(m.Symbols))
	for _, s := range m.Symbols {
		if s.Weight <= 0 {
			return fmt.Errorf("machine %s: symbol %s with non-positive weight", m.ID, s.Name)
		}
		names[s.Name] = true
	}
	for sym := range m.Paytable {
		if !names[sym] {
			return fmt.Errorf("machine %s: paytable references unknown symbol %s", m.ID, sym)
		}
	}
	if m.WildSymbol != "" && !names[m.WildSymbol] {
		return fmt.Errorf("machine %s: wild symbol %s not in reel strip", m.ID, m.WildSymbol)
	}
	if m.ScatterSymbol != "" && !names[m.ScatterSymbol] {
		return fmt.Errorf("machine %s: scatter symbol %s not in reel strip", m.ID, m.ScatterSymbol)
	}
	if m.BonusSymbol != "" && !names[m.BonusSymbol] {
		return fmt.Errorf("machine %s: bonus symbol %s not in reel strip", m.ID, m.BonusSymbol)
	}
	if m.RTPTarget <= 0 || m.RTPTarget > 100 {
		return fmt.Errorf("machine %s: rtp_target out of (0,100]: %v", m.ID, m.RTPTarget)
	}
	if m.BonusFrequency < 0 || m.BonusFrequency >= 100 {
		return fmt.Errorf("machine %s: bonus_frequency out of [0,100): %v", m.ID, m.BonusFrequency)
	}
	return nil
}

// Registry indexa as máquinas por id. Lookup puro após a carga.
type Registry struct {
	byID map[string]*Machine
}

func NewRegistry(machines []Machine) (*Registry, error) {
	if len(machines) == 0 {
		return nil, errors.New("no slot machines configured")
	}
	r := &Registry{byID: make(map[string]*Machine, len(machines))}
	for i := range machines {
		m := machines[i]
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicated machine id: %s", m.ID)
		}
		r.byID[m.ID] = &m
	}
	return r, nil
}

func (r *Registry) Machine(id string) (*Machine, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMachine, id)
	}
	return m, nil
}

func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	return out
}

// Defaults retorna as máquinas embutidas: um slot clássico de uma linha e
// um de vídeo 5x3 com scatter, bônus e free spins.
func Defaults() *Registry {
	r, err := NewRegistry([]Machine{classic3(), fruits5x3()})
	if err != nil {
		panic(err) // defaults inválidos são erro de programação
	}
	return r
}

// classic3 paga ~100% na paytable crua; o fator de RTP por spin é quem
// traz o retorno pago para perto do rtp_target.
func classic3() Machine {
	return Machine{
		ID:    "classic-3",
		Reels: 3,
		Rows:  1,
		Symbols: []Symbol{
			{Name: "cherry", Weight: 30},
			{Name: "lemon", Weight: 25},
			{Name: "orange", Weight: 20},
			{Name: "bell", Weight: 15},
			{Name: "seven", Weight: 8},
			{Name: "wild", Weight: 2},
		},
		Paytable: map[string]map[int]float64{
			"cherry": {2: 0.7, 3: 7},
			"lemon":  {2: 0.9, 3: 10},
			"orange": {2: 1.2, 3: 14},
			"bell":   {2: 2, 3: 25},
			"seven":  {2: 4, 3: 80},
			"wild":   {2: 8, 3: 150},
		},
		WildSymbol: "wild",
		RTPTarget:  95,
	}
}

func fruits5x3() Machine {
	return Machine{
		ID:    "fruits-5x3",
		Reels: 5,
		Rows:  3,
		Symbols: []Symbol{
			{Name: "cherry", Weight: 28},
			{Name: "plum", Weight: 24},
			{Name: "grape", Weight: 18},
			{Name: "bell", Weight: 12},
			{Name: "seven", Weight: 7},
			{Name: "wild", Weight: 3},
			{Name: "star", Weight: 5},  // scatter
			{Name: "chest", Weight: 3}, // bônus
		},
		Paytable: map[string]map[int]float64{
			"cherry": {3: 2, 4: 6, 5: 20},
			"plum":   {3: 3, 4: 9, 5: 30},
			"grape":  {3: 4, 4: 12, 5: 45},
			"bell":   {3: 6, 4: 20, 5: 80},
			"seven":  {3: 12, 4: 50, 5: 200},
			"wild":   {3: 20, 4: 90, 5: 400},
		},
		WildSymbol:      "wild",
		ScatterSymbol:   "star",
		BonusSymbol:     "chest",
		RTPTarget:       95,
		BonusFrequency:  2,
		BonusMultiplier: 10,
		Features:        []string{FeatureFreeSpins, FeatureMultipliers, FeatureBonusGame},
	}
}

type fileSection struct {
	Machines []Machine `yaml:"slot_machines"`
}

// LoadYAML monta o registry a partir da seção slot_machines do arquivo de
// configuração do engine. Arquivo sem a seção cai nos defaults.
func LoadYAML(data []byte) (*Registry, error) {
	var sec fileSection
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return nil, fmt.Errorf("parse slot machines: %w", err)
	}
	if len(sec.Machines) == 0 {
		return Defaults(), nil
	}
	return NewRegistry(sec.Machines)
}
