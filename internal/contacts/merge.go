package contacts

import (
	"slices"
	"time"

	"github.com/starford/contactnotes/internal/models"
)

// NoteLookup resolves the note attached to an email. Lookups never fail;
// a missing note is "".
type NoteLookup interface {
	Get(email string) string
}

// Merge projects every raw contact to its display form, joins it with its
// note and orders the result most-recently-updated first.
//
// No contact is dropped: records without name, email or metadata still
// appear, with empty fields, and are joined under the "" key. Contacts
// without an update time sort after those with one and keep their input
// order among themselves. The input slice is not modified.
func Merge(raw []models.Contact, notes NoteLookup) []models.ContactView {
	out := make([]models.ContactView, len(raw))
	for i, c := range raw {
		out[i] = Project(c, notes)
	}
	SortByRecency(out)
	return out
}

// Project builds the display view of a single contact.
func Project(c models.Contact, notes NoteLookup) models.ContactView {
	v := models.ContactView{
		Name:       first(c.Names),
		Email:      first(c.Emails),
		UpdateTime: parseTime(first(c.SourceUpdateTimes)),
	}
	if notes != nil {
		v.Note = notes.Get(v.Email)
	}
	return v
}

// SortByRecency stably sorts views by UpdateTime, latest first.
func SortByRecency(views []models.ContactView) {
	slices.SortStableFunc(views, compareRecency)
}

func compareRecency(a, b models.ContactView) int {
	switch {
	case a.UpdateTime != nil && b.UpdateTime != nil:
		return b.UpdateTime.Compare(*a.UpdateTime)
	case a.UpdateTime != nil:
		return -1
	case b.UpdateTime != nil:
		return 1
	default:
		return 0
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// parseTime returns nil for empty or malformed timestamps.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}
