package entry

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mamadbah2/dairy/internal/domain/models"
)

// MaxNameDistance is the largest edit distance at which a spoken name is
// still considered to refer to an existing row.
const MaxNameDistance = 3

// Candidate is a name that a spoken name can resolve to.
type Candidate struct {
	Index int
	Name  string
}

// Resolve returns the index of the candidate closest to spoken, comparing
// case-insensitively. The first candidate wins ties. ok is false when the
// closest candidate is further than MaxNameDistance or there are none.
func Resolve(spoken string, candidates []Candidate) (index int, ok bool) {
	target := strings.ToLower(spoken)
	best := -1
	bestIndex := 0
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(target, strings.ToLower(c.Name))
		if best < 0 || d < best {
			best = d
			bestIndex = c.Index
		}
	}
	if best < 0 || best > MaxNameDistance {
		return 0, false
	}
	return bestIndex, true
}

// rowCandidates lists the named rows; rows with a blank name never match.
func rowCandidates(rows []models.RowState) []Candidate {
	out := make([]Candidate, 0, len(rows))
	for i, r := range rows {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		out = append(out, Candidate{Index: i, Name: r.Name})
	}
	return out
}
