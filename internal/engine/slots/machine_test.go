package slots

import (
	"errors"
	"testing"
)

func TestDefaultsRegistry(t *testing.T) {
	r := Defaults()

	for _, id := range []string{"classic-3", "fruits-5x3"} {
		m, err := r.Machine(id)
		if err != nil {
			t.Fatalf("Machine(%s): %v", id, err)
		}
		if err := m.Validate(); err != nil {
			t.Errorf("default machine %s invalid: %v", id, err)
		}
	}

	if _, err := r.Machine("nope"); !errors.Is(err, ErrUnknownMachine) {
		t.Errorf("expected ErrUnknownMachine, got %v", err)
	}
}

func TestValidateRejectsBrokenMachines(t *testing.T) {
	base := classic3()

	tests := []struct {
		name   string
		mutate func(*Machine)
	}{
		{"empty id", func(m *Machine) { m.ID = "" }},
		{"zero reels", func(m *Machine) { m.Reels = 0 }},
		{"no symbols", func(m *Machine) { m.Symbols = nil }},
		{"zero weight", func(m *Machine) { m.Symbols[0].Weight = 0 }},
		{"paytable unknown symbol", func(m *Machine) { m.Paytable["ghost"] = map[int]float64{3: 5} }},
		{"wild not on strip", func(m *Machine) { m.WildSymbol = "ghost" }},
		{"rtp target zero", func(m *Machine) { m.RTPTarget = 0 }},
		{"rtp target above 100", func(m *Machine) { m.RTPTarget = 101 }},
		{"bonus frequency 100", func(m *Machine) { m.BonusFrequency = 100 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base
			m.Symbols = append([]Symbol(nil), base.Symbols...)
			m.Paytable = map[string]map[int]float64{}
			for k, v := range base.Paytable {
				m.Paytable[k] = v
			}
			tt.mutate(&m)
			if err := m.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	data := []byte(`
slot_machines:
  - id: mini
    reels: 3
    rows: 1
    rtp_target: 92
    symbols:
      - name: a
        weight: 5
      - name: b
        weight: 3
    paytable:
      a:
        3: 10
`)
	r, err := LoadYAML(data)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	m, err := r.Machine("mini")
	if err != nil {
		t.Fatalf("Machine(mini): %v", err)
	}
	if m.RTPTarget != 92 {
		t.Errorf("rtp_target = %v, want 92", m.RTPTarget)
	}
	if m.Paytable["a"][3] != 10 {
		t.Errorf("paytable not parsed: %+v", m.Paytable)
	}
}

func TestLoadYAMLEmptyFallsBackToDefaults(t *testing.T) {
	r, err := LoadYAML([]byte("other: 1\n"))
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if _, err := r.Machine("classic-3"); err != nil {
		t.Errorf("defaults should include classic-3: %v", err)
	}
}
