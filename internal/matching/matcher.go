// Package matching suggests which company a contact most likely works for.
//
// Every contact/company pair is scored by independent additive rules; each rule that
// fires adds points and one human-readable reason. The score is capped at 100.
package matching

import (
	"fmt"
	"math"
	"strings"

	"fleet-crm/internal/models"
	"fleet-crm/pkg/utils"
)

// Config allows tuning the matcher without code changes.
// Defaults reproduce the production weights.
type Config struct {
	// MinScore drops suggestions below this score in MatchAll.
	MinScore float64

	NameGate   float64 // similarity required for the employer-name rules
	NameWeight float64
	// StackNameRules adds both the trade-name and legal-name signals when both fire.
	// When false only the stronger of the two counts.
	StackNameRules bool

	SameEmailDomainPoints  float64
	EmailWebsitePoints     float64
	SamePhonePoints        float64
	PhonePrefixPoints      float64
	PhonePrefixDigits      int
	CityGate               float64
	CityWeight             float64
	SameStatePoints        float64
	ExecutiveTitlePoints   float64
	ExecutiveTitleKeywords []string
}

// DefaultConfig returns the production weights.
func DefaultConfig() Config {
	return Config{
		MinScore:              60,
		NameGate:              70,
		NameWeight:            0.4,
		StackNameRules:        true,
		SameEmailDomainPoints: 30,
		EmailWebsitePoints:    25,
		SamePhonePoints:       20,
		PhonePrefixPoints:     10,
		PhonePrefixDigits:     8,
		CityGate:              80,
		CityWeight:            0.1,
		SameStatePoints:       5,
		ExecutiveTitlePoints:  5,
		ExecutiveTitleKeywords: []string{
			"diretor", "gerente", "coordenador", "supervisor",
			"ceo", "cto", "cfo", "presidente",
		},
	}
}

// Score is the outcome of a single contact/company comparison.
type Score struct {
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// Matcher scores contacts against companies.
type Matcher struct {
	cfg Config
}

func NewMatcher(cfg Config) *Matcher { return &Matcher{cfg: cfg} }
func NewDefault() *Matcher          { return NewMatcher(DefaultConfig()) }

// Config returns a copy of the matcher's configuration.
func (m *Matcher) Config() Config { return m.cfg }

// ScoreMatch applies every rule to the pair. Missing fields simply keep a rule from firing.
func (m *Matcher) ScoreMatch(contact models.Contact, company models.Company) Score {
	var (
		total   float64
		reasons []string
	)
	add := func(points float64, reason string) {
		total += points
		reasons = append(reasons, reason)
	}

	// Employer name vs trade name / legal name
	tradeSim := utils.Similarity(contact.Employer, company.TradeName)
	legalSim := utils.Similarity(contact.Employer, company.LegalName)
	tradeHit := tradeSim > m.cfg.NameGate
	legalHit := legalSim > m.cfg.NameGate
	if !m.cfg.StackNameRules && tradeHit && legalHit {
		if tradeSim >= legalSim {
			legalHit = false
		} else {
			tradeHit = false
		}
	}
	if tradeHit {
		add(tradeSim*m.cfg.NameWeight, fmt.Sprintf("Empresa informada similar ao nome fantasia (%d%%)", pct(tradeSim)))
	}
	if legalHit {
		add(legalSim*m.cfg.NameWeight, fmt.Sprintf("Empresa informada similar à razão social (%d%%)", pct(legalSim)))
	}

	// Email domains
	contactDomain := utils.EmailDomain(contact.Email)
	if contactDomain != "" && contactDomain == utils.EmailDomain(company.Email) {
		add(m.cfg.SameEmailDomainPoints, fmt.Sprintf("Mesmo domínio de email (%s)", contactDomain))
	}
	if contactDomain != "" && contactDomain == utils.WebsiteHost(company.Website) {
		add(m.cfg.EmailWebsitePoints, fmt.Sprintf("Domínio do email corresponde ao site da empresa (%s)", contactDomain))
	}

	// Phones: every cross pair counts on its own
	for _, cp := range utils.PhoneDigitsList(contact.Phones()...) {
		for _, kp := range utils.PhoneDigitsList(company.Phones()...) {
			switch {
			case cp == kp:
				add(m.cfg.SamePhonePoints, "Telefone idêntico ao da empresa")
			case samePrefix(cp, kp, m.cfg.PhonePrefixDigits):
				add(m.cfg.PhonePrefixPoints, "Telefone com mesmo prefixo da empresa")
			}
		}
	}

	// Location
	if citySim := utils.Similarity(contact.Address.City, company.Address.City); citySim > m.cfg.CityGate {
		add(citySim*m.cfg.CityWeight, fmt.Sprintf("Mesma cidade (%s)", strings.TrimSpace(company.Address.City)))
	}
	cs := strings.ToUpper(strings.TrimSpace(contact.Address.State))
	if cs != "" && cs == strings.ToUpper(strings.TrimSpace(company.Address.State)) {
		add(m.cfg.SameStatePoints, fmt.Sprintf("Mesmo estado (%s)", cs))
	}

	if utils.ContainsAny(contact.JobTitle, m.cfg.ExecutiveTitleKeywords) {
		add(m.cfg.ExecutiveTitlePoints, fmt.Sprintf("Cargo de decisão (%s)", strings.TrimSpace(contact.JobTitle)))
	}

	return Score{Score: clamp(total), Reasons: reasons}
}

func samePrefix(a, b string, n int) bool {
	if n <= 0 || len(a) < n || len(b) < n {
		return false
	}
	return a[:n] == b[:n]
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(v, 100))
}

func pct(v float64) int { return int(math.Round(v)) }

// ScoreMatch scores a pair with the default configuration.
func ScoreMatch(contact models.Contact, company models.Company) Score {
	return NewDefault().ScoreMatch(contact, company)
}
