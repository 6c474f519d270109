// Package testsupport holds the help desk domain and golden file helpers
// shared by the package tests.
package testsupport

import (
	"time"

	"github.com/goliatone/go-entityform/pkg/provider"
	"github.com/shopspring/decimal"
)

// Priority is a closed enumeration.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
)

// Enumerants implements meta.Enumeration.
func (Priority) Enumerants() []any {
	return []any{PriorityLow, PriorityNormal, PriorityUrgent}
}

// Agent is a referencable entity.
type Agent struct {
	ID   string `meta:"readOnly;displayName=ID"`
	Name string `meta:"required"`
}

func (a *Agent) EntityID() string    { return a.ID }
func (a *Agent) EntityLabel() string { return a.Name }

// Audit is embedded in Ticket to exercise embedded property discovery.
type Audit struct {
	CreatedBy string    `meta:"readOnly;order=90"`
	UpdatedAt time.Time `meta:"readOnly;order=91"`
}

// Ticket is the reference record of the help desk domain.
type Ticket struct {
	Audit

	Subject     string          `meta:"required;order=1;maxLength=120;placeholder='What went wrong?'"`
	Body        string          `meta:"order=2;maxLength=4000;displayName=Description"`
	Priority    Priority        `meta:"order=3;defaultValue=normal"`
	Assignee    *Agent          `meta:"order=4"`
	Tags        []string        `meta:"order=5;dataProviderBean=tagService"`
	Estimate    float64         `meta:"order=6;min=0;max=100"`
	Cost        decimal.Decimal `meta:"order=7"`
	Due         time.Time       `meta:"order=8;temporal=date"`
	Urgent      bool            `meta:"order=9"`
	Attachments []string        `meta:"order=10"`
	Internal    string          `meta:"hidden"`
	Reference   string          `meta:"readOnly;order=11"`
}

// AgentService is the data provider synthesised for Agent references.
type AgentService struct {
	Agents []*Agent
}

// List returns the configured agents.
func (s *AgentService) List() []*Agent { return s.Agents }

// TagService offers ticket tags.
type TagService struct{}

// List returns the known tags.
func (TagService) List() []string { return []string{"billing", "network", "printer"} }

// Agents returns the agents registered by Services.
func Agents() []*Agent {
	return []*Agent{
		{ID: "a1", Name: "Ada"},
		{ID: "a2", Name: "Grace"},
		{ID: "a3", Name: "Linus"},
	}
}

// Services returns a registry with the help desk data providers.
func Services() *provider.Registry {
	reg := provider.NewRegistry()
	reg.MustRegister("agentService", &AgentService{Agents: Agents()})
	reg.MustRegister("tagService", TagService{})
	return reg
}

// SampleTicket returns a populated ticket whose assignee is one of Agents.
func SampleTicket(agents []*Agent) *Ticket {
	return &Ticket{
		Audit: Audit{
			CreatedBy: "support",
			UpdatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		Subject:   "Printer offline",
		Body:      "The printer on floor two stopped answering.",
		Priority:  PriorityUrgent,
		Assignee:  agents[1],
		Tags:      []string{"network", "printer"},
		Estimate:  2.5,
		Cost:      decimal.RequireFromString("12.75"),
		Due:       time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Urgent:    true,
		Reference: "HD-1042",
	}
}
