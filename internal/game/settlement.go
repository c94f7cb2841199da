package game

import "github.com/jason-s-yu/topcard/internal/models"

// SettlementPolicy decides how a wager moves points between players.
// Settle returns one point delta per roster position.
type SettlementPolicy interface {
	Settle(players []*models.Player, bettor, points int) []int
}

// SettlementFunc adapts a function to SettlementPolicy.
type SettlementFunc func(players []*models.Player, bettor, points int) []int

func (f SettlementFunc) Settle(players []*models.Player, bettor, points int) []int {
	return f(players, bettor, points)
}

// DefaultSettlement is the standard wager rule.
//
// A bettor whose hand value is strictly greater than every opponent's collects
// points from each opponent. Otherwise the bettor pays points to the strongest
// opponent, ranked by hand value and then by highest single card precedence.
// Opponents still tied share the wager; the odd points go one each to the
// earliest of them in roster order.
type DefaultSettlement struct{}

func (DefaultSettlement) Settle(players []*models.Player, bettor, points int) []int {
	deltas := make([]int, len(players))
	if len(players) < 2 || bettor < 0 || bettor >= len(players) {
		return deltas
	}

	bettorValue := players[bettor].HandValue()
	opponents := make([]int, 0, len(players)-1)
	beatsAll := true
	for i, p := range players {
		if i == bettor {
			continue
		}
		opponents = append(opponents, i)
		if p.HandValue() >= bettorValue {
			beatsAll = false
		}
	}

	if beatsAll {
		for _, i := range opponents {
			deltas[i] -= points
		}
		deltas[bettor] += points * len(opponents)
		return deltas
	}

	best := leaders(players, opponents)
	deltas[bettor] -= points
	share, rem := points/len(best), points%len(best)
	for k, i := range best {
		deltas[i] += share
		if k < rem {
			deltas[i]++
		}
	}
	return deltas
}

// leaders narrows idx to the players with the highest hand value, then to
// those holding the highest single card precedence. Order is preserved.
func leaders(players []*models.Player, idx []int) []int {
	if len(idx) == 0 {
		return nil
	}

	maxValue := players[idx[0]].HandValue()
	for _, i := range idx[1:] {
		maxValue = max(maxValue, players[i].HandValue())
	}
	var byValue []int
	for _, i := range idx {
		if players[i].HandValue() == maxValue {
			byValue = append(byValue, i)
		}
	}
	if len(byValue) == 1 {
		return byValue
	}

	maxPrec := 0
	for _, i := range byValue {
		maxPrec = max(maxPrec, players[i].Hand().HighestPrecedence())
	}
	var out []int
	for _, i := range byValue {
		if players[i].Hand().HighestPrecedence() == maxPrec {
			out = append(out, i)
		}
	}
	return out
}
