package game

import "strings"

// Lifeline is a small set of limited-use powers. The bit values are part of
// the persisted record format and must not change.
type Lifeline uint8

const (
	FiftyFifty Lifeline = 1 << iota
	DoubleDip
)

// AllLifelines is the budget granted at the start of a ladder game.
const AllLifelines = FiftyFifty | DoubleDip

func (l Lifeline) Has(o Lifeline) bool { return l&o == o }

func (l Lifeline) Union(o Lifeline) Lifeline { return l | o }

func (l Lifeline) Without(o Lifeline) Lifeline { return l &^ o }

var lifelineKeywords = []struct {
	lifeline Lifeline
	keyword  string
}{
	{FiftyFifty, "!50/50"},
	{DoubleDip, "!dd"},
}

// Keyword returns the chat keyword that activates the lifeline.
func (l Lifeline) Keyword() string {
	for _, lk := range lifelineKeywords {
		if lk.lifeline == l {
			return lk.keyword
		}
	}
	return ""
}

func (l Lifeline) String() string {
	var names []string
	if l.Has(FiftyFifty) {
		names = append(names, "50/50")
	}
	if l.Has(DoubleDip) {
		names = append(names, "double-dip")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// matchLifeline reports which of the available lifelines, if any, the
// message activates. Keywords for lifelines not in available never match.
func matchLifeline(content string, available Lifeline) (Lifeline, bool) {
	lower := strings.ToLower(content)
	for _, lk := range lifelineKeywords {
		if available.Has(lk.lifeline) && strings.HasPrefix(lower, lk.keyword) {
			return lk.lifeline, true
		}
	}
	return 0, false
}
