package hostsys

import (
	"context"
	"fmt"
	"sync"
)

// ItemRecord is one item in the in-memory host system.
type ItemRecord struct {
	Name     string          `yaml:"name"`
	Rate     float64         `yaml:"rate"`
	StockUOM string          `yaml:"stock_uom"`
	Flags    map[string]bool `yaml:"flags"`
}

// InMemorySystem implements all four collaborator contracts against
// in-process maps. It backs the CLI demo and the test suites.
type InMemorySystem struct {
	mu        sync.Mutex
	items     map[string]ItemRecord
	customers map[string]string

	// Choices are consumed front to back by PresentChoice.
	Choices []string
	// Decisions are consumed front to back by Decide.
	Decisions []bool

	Submitted     []Submission
	Notifications []string

	// Error injection for testing failure paths.
	ItemFlagErr   error
	ItemMasterErr error
	SubmitErr     error

	nextOrderID int
}

// Compile-time checks that InMemorySystem satisfies the contracts.
var (
	_ Lookup    = (*InMemorySystem)(nil)
	_ Chooser   = (*InMemorySystem)(nil)
	_ Submitter = (*InMemorySystem)(nil)
	_ Notifier  = (*InMemorySystem)(nil)
)

// NewInMemorySystem creates an empty in-memory host system.
func NewInMemorySystem() *InMemorySystem {
	return &InMemorySystem{
		items:     make(map[string]ItemRecord),
		customers: make(map[string]string),
	}
}

// System returns the collaborator bundle wired to this instance.
func (s *InMemorySystem) System() *System {
	return &System{Lookup: s, Chooser: s, Submitter: s, Notifier: s}
}

// AddItem registers an item record under its SKU.
func (s *InMemorySystem) AddItem(sku string, rec ItemRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sku] = rec
}

// AddCustomer registers a customer display name under its id.
func (s *InMemorySystem) AddCustomer(id, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[id] = displayName
}

// ItemFlag returns the named boolean attribute of the SKU.
func (s *InMemorySystem) ItemFlag(_ context.Context, sku, attribute string) (bool, error) {
	if s.ItemFlagErr != nil {
		return false, s.ItemFlagErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[sku]
	if !ok {
		return false, fmt.Errorf("item %s: %w", sku, ErrNotFound)
	}
	return rec.Flags[attribute], nil
}

// ItemMaster returns the item master data for the SKU.
func (s *InMemorySystem) ItemMaster(_ context.Context, sku string) (*ItemMaster, error) {
	if s.ItemMasterErr != nil {
		return nil, s.ItemMasterErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[sku]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", sku, ErrNotFound)
	}
	return &ItemMaster{DisplayName: rec.Name, DefaultRate: rec.Rate, StockUOM: rec.StockUOM}, nil
}

// CustomerDisplayName resolves a customer id.
func (s *InMemorySystem) CustomerDisplayName(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.customers[id]
	if !ok {
		return "", fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return name, nil
}

// PresentChoice pops the next scripted choice. With no script left it
// declines when allowed and otherwise picks the first option.
func (s *InMemorySystem) PresentChoice(_ context.Context, req ChoiceRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Choices) > 0 {
		choice := s.Choices[0]
		s.Choices = s.Choices[1:]
		return choice, nil
	}
	if req.AllowEmpty {
		return "", nil
	}
	if len(req.Options) > 0 {
		return req.Options[0], nil
	}
	return "", nil
}

// Decide pops the next scripted decision, defaulting to accept.
func (s *InMemorySystem) Decide(_ context.Context, _, _, _, _ string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Decisions) > 0 {
		d := s.Decisions[0]
		s.Decisions = s.Decisions[1:]
		return d, nil
	}
	return true, nil
}

// SubmitOrder records the submission and fabricates one order id per
// participant order.
func (s *InMemorySystem) SubmitOrder(_ context.Context, sub Submission) (*SubmitResult, error) {
	if s.SubmitErr != nil {
		return nil, s.SubmitErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Submitted = append(s.Submitted, sub)

	ids := make([]string, 0, len(sub.Orders))
	for range sub.Orders {
		s.nextOrderID++
		ids = append(ids, fmt.Sprintf("SO-%05d", s.nextOrderID))
	}
	return &SubmitResult{CreatedOrderIDs: ids}, nil
}

// Notify records the message.
func (s *InMemorySystem) Notify(message string, severity Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notifications = append(s.Notifications, fmt.Sprintf("[%s] %s", severity, message))
}
