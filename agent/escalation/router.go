package escalation

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryCritical  Category = "critical"
	CategoryBilling   Category = "billing"
	CategoryTechnical Category = "technical"
	CategoryGeneral   Category = "general"
)

// Priority orders categories for active-record replacement:
// critical > billing > technical > general.
func (c Category) Priority() int {
	switch c {
	case CategoryCritical:
		return 4
	case CategoryBilling:
		return 3
	case CategoryTechnical:
		return 2
	default:
		return 1
	}
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ParseUrgency maps a caller-supplied hint onto an Urgency, defaulting
// to low for empty or unrecognized hints.
func ParseUrgency(hint string) Urgency {
	switch Urgency(strings.ToLower(strings.TrimSpace(hint))) {
	case UrgencyMedium:
		return UrgencyMedium
	case UrgencyHigh:
		return UrgencyHigh
	default:
		return UrgencyLow
	}
}

// Record is a routing decision for one escalated issue.
type Record struct {
	Category    Category  `json:"category"`
	Urgency     Urgency   `json:"urgency"`
	Department  string    `json:"department"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Config struct {
	CriticalKeywords  []string          `envconfig:"CRITICAL_KEYWORDS" split_words:"true" default:"emergency,fraud,legal,security breach"`
	BillingKeywords   []string          `envconfig:"BILLING_KEYWORDS" split_words:"true" default:"payment,refund,billing,charge"`
	TechnicalKeywords []string          `envconfig:"TECHNICAL_KEYWORDS" split_words:"true" default:"error,bug,not working,broken"`
	RoutingTable      map[string]string `envconfig:"ROUTING_TABLE" split_words:"true" default:"critical:incident-response,billing:billing-ops,technical:tech-support,general:customer-care"`
}

// Router classifies issue descriptions into escalation records. Category is
// keyword-driven in strict priority order; the urgency hint is advisory and
// never changes the category. Classification is deterministic.
type Router struct {
	critical  []string
	billing   []string
	technical []string
	routes    map[Category]string
	now       func() time.Time
}

func NewRouter(cfg Config) *Router {
	routes := map[Category]string{
		CategoryCritical:  "incident-response",
		CategoryBilling:   "billing-ops",
		CategoryTechnical: "tech-support",
		CategoryGeneral:   "customer-care",
	}
	for name, target := range cfg.RoutingTable {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		switch Category(strings.ToLower(strings.TrimSpace(name))) {
		case CategoryCritical:
			routes[CategoryCritical] = target
		case CategoryBilling:
			routes[CategoryBilling] = target
		case CategoryTechnical:
			routes[CategoryTechnical] = target
		case CategoryGeneral:
			routes[CategoryGeneral] = target
		}
	}

	return &Router{
		critical:  lowerAll(cfg.CriticalKeywords),
		billing:   lowerAll(cfg.BillingKeywords),
		technical: lowerAll(cfg.TechnicalKeywords),
		routes:    routes,
		now:       time.Now,
	}
}

// Classify scans the description case-insensitively against the keyword
// sets in priority order. A critical match wins regardless of any other
// matches or the urgency hint.
func (r *Router) Classify(description string, urgencyHint string) Record {
	category := CategoryGeneral
	lowered := strings.ToLower(description)

	switch {
	case containsAny(lowered, r.critical):
		category = CategoryCritical
	case containsAny(lowered, r.billing):
		category = CategoryBilling
	case containsAny(lowered, r.technical):
		category = CategoryTechnical
	}

	return r.Route(category, ParseUrgency(urgencyHint), description)
}

// Route builds a record for an already-known category, bypassing keyword
// classification. Used when the operation itself determines the category,
// such as a renewal eligibility failure routing straight to billing.
func (r *Router) Route(category Category, urgency Urgency, description string) Record {
	if _, ok := r.routes[category]; !ok {
		category = CategoryGeneral
	}
	return Record{
		Category:    category,
		Urgency:     urgency,
		Department:  r.routes[category],
		Description: strings.TrimSpace(description),
		CreatedAt:   r.now().UTC(),
	}
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		trimmed := strings.ToLower(strings.TrimSpace(keyword))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
