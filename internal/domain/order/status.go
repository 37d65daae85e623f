package order

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status represents the lifecycle status of a store order
type Status string

const (
	StatusPaymentPending Status = "PAYMENT_PENDING"
	StatusPending        Status = "PENDING"
	StatusProcessing     Status = "PROCESSING"
	StatusShipped        Status = "SHIPPED"
	StatusDelivered      Status = "DELIVERED"
	StatusReturned       Status = "RETURNED"
	StatusCancelled      Status = "CANCELLED"
	StatusRefunded       Status = "REFUNDED"
)

// transitions is the fixed table of allowed next statuses.
// Terminal statuses map to an empty slice.
var transitions = map[Status][]Status{
	StatusPaymentPending: {StatusPending, StatusCancelled},
	StatusPending:        {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusDelivered, StatusReturned},
	StatusDelivered:      {StatusReturned, StatusRefunded},
	StatusReturned:       {StatusRefunded},
	StatusCancelled:      {},
	StatusRefunded:       {},
}

// AllStatuses returns every status in lifecycle order
func AllStatuses() []Status {
	return []Status{
		StatusPaymentPending,
		StatusPending,
		StatusProcessing,
		StatusShipped,
		StatusDelivered,
		StatusReturned,
		StatusCancelled,
		StatusRefunded,
	}
}

// ParseStatus converts a raw string into a Status
func ParseStatus(s string) (Status, bool) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	return status, status.IsValid()
}

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Label returns a human readable label, e.g. "Payment Pending"
func (s Status) Label() string {
	words := strings.ReplaceAll(strings.ToLower(string(s)), "_", " ")
	return cases.Title(language.English).String(words)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	return CanTransition(s, target)
}

// CanTransition reports whether target is in the allowed set of current
func CanTransition(current, target Status) bool {
	for _, next := range transitions[current] {
		if next == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from current.
// The returned slice is a copy and may be modified by the caller.
func AllowedTransitions(current Status) []Status {
	next := transitions[current]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}
