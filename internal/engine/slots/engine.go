// Package slots avalia spins de slot: sorteio ponderado da grade, linhas de
// pagamento com wild, ajuste de RTP por spin e gatilhos de scatter/bônus.
// Todo o pacote é computação pura sobre a config da máquina + RNG injetado.
package slots

import (
	"math"
	"math/rand"
)

// State é o estado corrente que o caller carrega entre spins.
type State struct {
	Multiplier int `json:"multiplier"`
	FreeSpins  int `json:"free_spins"`
}

// Outcome é o resultado de um spin. Criado por chamada, não retido.
type Outcome struct {
	Grid [][]string `json:"grid"` // [reel][row]

	RawLineWinCents int64   `json:"raw_line_win_cents"` // paytable pura × multiplier
	RTPFactor       float64 `json:"rtp_factor"`
	LineWinCents    int64   `json:"line_win_cents"` // após ajuste de RTP

	ScatterCount     int   `json:"scatter_count"`
	FreeSpinsAwarded int   `json:"free_spins_awarded"`
	Multiplier       int   `json:"multiplier"` // carrega para o próximo spin
	BonusTriggered   bool  `json:"bonus_triggered"`
	BonusPrizeCents  int64 `json:"bonus_prize_cents"`

	TotalWinCents int64 `json:"total_win_cents"`
}

// Spin roda a máquina uma vez. O RNG é injetado para reprodutibilidade em
// teste; em produção cada serviço cria o seu.
func Spin(m *Machine, betCents int64, st State, rng *rand.Rand) Outcome {
	out := Outcome{Grid: drawGrid(m, rng)}

	mult := st.Multiplier
	if mult < 1 {
		mult = 1
	}

	// linhas: cada linha horizontal + as duas diagonais em máquinas multi-row
	var lineSum int64
	for _, line := range paylines(m, out.Grid) {
		lineSum += lineWin(m, line, betCents)
	}
	out.RawLineWinCents = lineSum * int64(mult)

	// ajuste de RTP: o ganho cru da paytable não é pago como está; o fator
	// prende a distribuição real ao alvo configurado mantendo o spin aleatório
	out.RTPFactor = m.RTPTarget/100 + (rng.Float64()*0.10 - 0.05)
	if out.RTPFactor < 0 {
		out.RTPFactor = 0
	}
	out.LineWinCents = int64(math.Round(float64(out.RawLineWinCents) * out.RTPFactor))

	// scatter e bônus olham a grade inteira, independente das linhas
	out.ScatterCount = countSymbol(out.Grid, m.ScatterSymbol)
	bonusCount := countSymbol(out.Grid, m.BonusSymbol)

	// free spins: caminho determinístico (scatter) e probabilístico são
	// independentes e somam quando disparam juntos
	if out.ScatterCount >= 3 {
		out.FreeSpinsAwarded += out.ScatterCount * 2
	}
	if m.HasFeature(FeatureFreeSpins) && rng.Float64()*100 < m.BonusFrequency {
		out.FreeSpinsAwarded += 5 + rng.Intn(6)
	}
	if out.FreeSpinsAwarded > 0 && m.HasFeature(FeatureMultipliers) && mult < 2 {
		mult = 2
	}
	out.Multiplier = mult

	// bonus game: mesmo padrão de gatilho duplo, prêmio fixo sobre a stake
	if bonusCount >= 3 || (m.HasFeature(FeatureBonusGame) && rng.Float64()*100 < m.BonusFrequency) {
		out.BonusTriggered = true
		out.BonusPrizeCents = int64(math.Round(float64(betCents) * m.bonusPrizeMultiplier()))
	}

	out.TotalWinCents = out.LineWinCents + out.BonusPrizeCents
	return out
}

// drawGrid sorteia a grade reel a reel, com reposição e pesos da máquina.
func drawGrid(m *Machine, rng *rand.Rand) [][]string {
	total := m.totalWeight()
	grid := make([][]string, m.Reels)
	for r := range grid {
		grid[r] = make([]string, m.Rows)
		for w := range grid[r] {
			grid[r][w] = drawSymbol(m, total, rng)
		}
	}
	return grid
}

func drawSymbol(m *Machine, totalWeight int, rng *rand.Rand) string {
	n := rng.Intn(totalWeight)
	for _, s := range m.Symbols {
		n -= s.Weight
		if n < 0 {
			return s.Name
		}
	}
	// inalcançável com pesos validados
	return m.Symbols[len(m.Symbols)-1].Name
}

// paylines devolve as linhas avaliadas: cada row atravessando as bobinas e,
// com mais de uma row, as duas diagonais principais.
func paylines(m *Machine, grid [][]string) [][]string {
	var lines [][]string
	for row := 0; row < m.Rows; row++ {
		line := make([]string, m.Reels)
		for reel := 0; reel < m.Reels; reel++ {
			line[reel] = grid[reel][row]
		}
		lines = append(lines, line)
	}
	if m.Rows > 1 {
		down := make([]string, m.Reels)
		up := make([]string, m.Reels)
		for reel := 0; reel < m.Reels; reel++ {
			d := reel
			if d > m.Rows-1 {
				d = m.Rows - 1
			}
			u := m.Rows - 1 - reel
			if u < 0 {
				u = 0
			}
			down[reel] = grid[reel][d]
			up[reel] = grid[reel][u]
		}
		lines = append(lines, down, up)
	}
	return lines
}

// lineWin conta a sequência de símbolos iguais a partir da bobina mais à
// esquerda. Wild substitui qualquer símbolo exceto o scatter; scatter
// interrompe a linha.
func lineWin(m *Machine, line []string, betCents int64) int64 {
	target := ""
	count := 0
	for _, s := range line {
		if m.ScatterSymbol != "" && s == m.ScatterSymbol {
			break
		}
		if m.WildSymbol != "" && s == m.WildSymbol {
			count++
			continue
		}
		if target == "" {
			target = s
			count++
			continue
		}
		if s == target {
			count++
			continue
		}
		break
	}
	if target == "" {
		target = m.WildSymbol // linha só de wilds paga como wild
	}
	mult, ok := m.Paytable[target][count]
	if !ok {
		return 0
	}
	return int64(math.Round(mult * float64(betCents)))
}

func countSymbol(grid [][]string, symbol string) int {
	if symbol == "" {
		return 0
	}
	n := 0
	for _, reel := range grid {
		for _, s := range reel {
			if s == symbol {
				n++
			}
		}
	}
	return n
}
