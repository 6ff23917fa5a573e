package types

// Priority is the caller-supplied urgency of a request. It does not
// currently affect scoring; it is carried through for provider adapters
// and logging.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Request is the routing core's inbound unit of work.
type Request struct {
	RequestID   string            `json:"request_id"`
	Prompt      string            `json:"prompt"`
	UserID      string            `json:"user_id"`
	TeamID      string            `json:"team_id,omitempty"`
	CompanyID   string            `json:"company_id,omitempty"`
	Priority    Priority          `json:"priority"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Provider    string            `json:"provider,omitempty"`
	Requirements map[string]string `json:"requirements,omitempty"`
}

// Scopes returns the ordered, present budget scopes for this request:
// user, team and company, each only when its ID is set.
func (r *Request) Scopes() []BudgetLevel {
	scopes := make([]BudgetLevel, 0, 3)
	if r.UserID != "" {
		scopes = append(scopes, BudgetLevelUser)
	}
	if r.TeamID != "" {
		scopes = append(scopes, BudgetLevelTeam)
	}
	if r.CompanyID != "" {
		scopes = append(scopes, BudgetLevelCompany)
	}
	return scopes
}

// EntityID returns the entity identifier for the given budget level, or
// "" if the level does not apply to this request.
func (r *Request) EntityID(level BudgetLevel) string {
	switch level {
	case BudgetLevelUser:
		return r.UserID
	case BudgetLevelTeam:
		return r.TeamID
	case BudgetLevelCompany:
		return r.CompanyID
	default:
		return ""
	}
}
