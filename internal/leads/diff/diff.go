// Package diff compares a proposed lead update against the stored record and
// renders an ordered list of human-readable change descriptions. Computation
// is pure: inputs are never mutated and the same (before, proposed) pair
// always yields the same result.
package diff

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EmptyValue is the placeholder rendered for absent values.
const EmptyValue = "Empty"

const dateLayout = "Jan 2, 2006"

// Opt wraps a proposed field value. Set=false means the field was omitted
// from the update and is treated as unchanged; Set=true with a nil Value is
// an explicit clear, which is a real change.
type Opt[T any] struct {
	Value *T
	Set   bool
}

// Set returns an Opt carrying a concrete value.
func Set[T any](value T) Opt[T] {
	return Opt[T]{Value: &value, Set: true}
}

// Clear returns an Opt that explicitly empties the field.
func Clear[T any]() Opt[T] {
	return Opt[T]{Set: true}
}

// Snapshot is the stored state of the tracked lead fields.
type Snapshot struct {
	Name         string
	Email        *string
	Phone        string
	Property     *string
	Source       string
	Status       string
	Priority     string
	Value        *float64
	FollowUpDate *time.Time
}

// Proposed is a partial update over the tracked field set.
type Proposed struct {
	Name         Opt[string]
	Email        Opt[string]
	Phone        Opt[string]
	Property     Opt[string]
	Source       Opt[string]
	Status       Opt[string]
	Priority     Opt[string]
	Value        Opt[float64]
	FollowUpDate Opt[time.Time]
}

// Change describes one tracked field whose proposed value differs from the
// stored value. Old and New are already rendered for display.
type Change struct {
	Field string
	Label string
	Old   string
	New   string
}

// Description renders the change as a single audit line.
func (c Change) Description() string {
	return fmt.Sprintf("%s changed from %q to %q", c.Label, c.Old, c.New)
}

// field binds a tracked field to its label and renderers. The order of
// trackedFields is the order changes appear in the audit trail.
type field struct {
	name     string
	label    string
	current  func(Snapshot) string
	proposed func(Proposed) (string, bool)
}

var trackedFields = []field{
	{"name", "Name",
		func(s Snapshot) string { return renderString(&s.Name) },
		func(p Proposed) (string, bool) { return renderOptString(p.Name) }},
	{"email", "Email",
		func(s Snapshot) string { return renderString(s.Email) },
		func(p Proposed) (string, bool) { return renderOptString(p.Email) }},
	{"phone", "Phone",
		func(s Snapshot) string { return renderString(&s.Phone) },
		func(p Proposed) (string, bool) { return renderOptString(p.Phone) }},
	{"property", "Property",
		func(s Snapshot) string { return renderString(s.Property) },
		func(p Proposed) (string, bool) { return renderOptString(p.Property) }},
	{"source", "Source",
		func(s Snapshot) string { return renderString(&s.Source) },
		func(p Proposed) (string, bool) { return renderOptString(p.Source) }},
	{"status", "Status",
		func(s Snapshot) string { return renderString(&s.Status) },
		func(p Proposed) (string, bool) { return renderOptString(p.Status) }},
	{"priority", "Priority",
		func(s Snapshot) string { return renderString(&s.Priority) },
		func(p Proposed) (string, bool) { return renderOptString(p.Priority) }},
	{"value", "Value",
		func(s Snapshot) string { return renderFloat(s.Value) },
		func(p Proposed) (string, bool) { return renderOptFloat(p.Value) }},
	{"followUpDate", "Follow-up Date",
		func(s Snapshot) string { return renderDate(s.FollowUpDate) },
		func(p Proposed) (string, bool) { return renderOptDate(p.FollowUpDate) }},
}

// Compute returns one Change per tracked field whose proposed value differs
// from the stored one. Omitted fields never produce changes; explicit clears
// do. Assignee and attachment changes are rendered out of band, see
// Assigned, Unassigned and AttachmentsAdded.
func Compute(before Snapshot, proposed Proposed) []Change {
	changes := make([]Change, 0, len(trackedFields))
	for _, f := range trackedFields {
		newValue, set := f.proposed(proposed)
		if !set {
			continue
		}
		oldValue := f.current(before)
		if newValue == oldValue {
			continue
		}
		changes = append(changes, Change{Field: f.name, Label: f.label, Old: oldValue, New: newValue})
	}
	return changes
}

// Descriptions renders each change on its own line, preserving order.
func Descriptions(changes []Change) []string {
	lines := make([]string, 0, len(changes))
	for _, change := range changes {
		lines = append(lines, change.Description())
	}
	return lines
}

// Assigned renders the reassignment line. The display name comes from the
// resolved user record, never from a raw identifier.
func Assigned(displayName string) string {
	return "Assigned to " + displayName
}

// Unassigned is the audit line for the dedicated unassign flow.
const Unassigned = "Lead unassigned"

// AttachmentsAdded renders the out-of-band attachment line. Names must be
// the names of documents actually persisted, not the request payload.
func AttachmentsAdded(names []string) string {
	return fmt.Sprintf("Added %d attachment(s): %s", len(names), strings.Join(names, ", "))
}

func renderString(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return EmptyValue
	}
	return *value
}

func renderOptString(opt Opt[string]) (string, bool) {
	if !opt.Set {
		return "", false
	}
	return renderString(opt.Value), true
}

func renderFloat(value *float64) string {
	if value == nil {
		return EmptyValue
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func renderOptFloat(opt Opt[float64]) (string, bool) {
	if !opt.Set {
		return "", false
	}
	return renderFloat(opt.Value), true
}

func renderDate(value *time.Time) string {
	if value == nil {
		return EmptyValue
	}
	return value.Format(dateLayout)
}

func renderOptDate(opt Opt[time.Time]) (string, bool) {
	if !opt.Set {
		return "", false
	}
	return renderDate(opt.Value), true
}
