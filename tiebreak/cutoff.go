package tiebreak

// Chase field sizing. The standard bracket assumes 23 qualifiers
// (top 20 plus 3 wild cards) and cuts to 16, 10 and 4 across the three
// elimination rounds.
const (
	StandardFieldSize = 23
	WildCardSlots     = 3
	Top20Cut          = 20

	minRemaining = 4
)

var standardRemaining = map[int]int{
	0: StandardFieldSize,
	1: 16,
	2: 10,
	3: 4,
	4: 4,
}

// CutoffPolicy decides how many players remain after each Chase round.
// Pluggable because the small-league scaling formula is a product decision
// that may change independently of the elimination engine.
type CutoffPolicy interface {
	PlayersRemaining(round, totalMembers int) int
}

// ProportionalCutoff scales the standard cutoffs down for leagues smaller
// than the standard field, flooring at four players per round.
type ProportionalCutoff struct{}

func NewProportionalCutoff() CutoffPolicy {
	return ProportionalCutoff{}
}

func (ProportionalCutoff) PlayersRemaining(round, totalMembers int) int {
	standard, ok := standardRemaining[round]
	if !ok {
		standard = StandardFieldSize
	}

	if totalMembers >= StandardFieldSize {
		return standard
	}

	if round == 0 {
		return totalMembers
	}

	if round == 4 {
		return min(minRemaining, totalMembers)
	}

	scaled := totalMembers * standard / StandardFieldSize
	if scaled < minRemaining {
		scaled = minRemaining
	}
	return min(scaled, totalMembers)
}

// EliminationsForRound returns how many players a round removes under the
// given policy.
func EliminationsForRound(p CutoffPolicy, round, totalMembers int) int {
	n := p.PlayersRemaining(round-1, totalMembers) - p.PlayersRemaining(round, totalMembers)
	if n < 0 {
		return 0
	}
	return n
}
