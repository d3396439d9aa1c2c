package matching

import (
	"sort"

	"fleet-crm/internal/models"
)

// ScoreContact scores one contact against every company, without filtering.
func (m *Matcher) ScoreContact(contact models.Contact, companies []models.Company) []models.MatchResult {
	out := make([]models.MatchResult, 0, len(companies))
	for _, co := range companies {
		s := m.ScoreMatch(contact, co)
		out = append(out, models.MatchResult{
			ContactID:   contact.ID,
			ContactName: contact.FullName,
			CompanyID:   co.ID,
			CompanyName: co.DisplayName(),
			Score:       s.Score,
			Reasons:     s.Reasons,
		})
	}
	return out
}

// MatchAll scores every pair and keeps, per contact, the best suggestion at or above MinScore.
// Results are ordered by score descending; ties break on contact id then company id.
// Records without an id get a deterministic one first (see WithIDs).
func (m *Matcher) MatchAll(contacts []models.Contact, companies []models.Company) []models.MatchResult {
	contacts, companies = WithIDs(contacts, companies)
	var all []models.MatchResult
	for _, c := range contacts {
		all = append(all, m.ScoreContact(c, companies)...)
	}
	return Rank(all, m.cfg.MinScore)
}

// Rank filters results below minScore, sorts them and keeps the first result per contact.
// Companies may appear for several contacts.
func Rank(results []models.MatchResult, minScore float64) []models.MatchResult {
	kept := make([]models.MatchResult, 0, len(results))
	for _, r := range results {
		if r.Score >= minScore {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.ContactID != b.ContactID {
			return a.ContactID < b.ContactID
		}
		return a.CompanyID < b.CompanyID
	})

	seen := make(map[string]bool, len(kept))
	out := make([]models.MatchResult, 0, len(kept))
	for _, r := range kept {
		if seen[r.ContactID] {
			continue
		}
		seen[r.ContactID] = true
		out = append(out, r)
	}
	return out
}

// MatchAll runs a batch with the default configuration.
func MatchAll(contacts []models.Contact, companies []models.Company) []models.MatchResult {
	return NewDefault().MatchAll(contacts, companies)
}
