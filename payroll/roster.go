/*
roster.go - TA roster management

PURPOSE:
  Add, list, and remove teaching assistants. Removal is conditional:
  a TA with logged hours is deactivated (active=false, row kept so
  historical entries still resolve); a TA with no hours is deleted
  outright.
*/
package payroll

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RemovalOutcome reports whether RemoveTA deleted or deactivated.
type RemovalOutcome string

const (
	RemovalDeleted     RemovalOutcome = "deleted"
	RemovalDeactivated RemovalOutcome = "deactivated"
)

type Roster struct {
	store Store
	now   Clock
	log   *zap.Logger
}

func NewRoster(store Store, log *zap.Logger) *Roster {
	return &Roster{store: store, now: time.Now, log: log}
}

// ListTAs returns the active roster ordered by name.
func (r *Roster) ListTAs(ctx context.Context) ([]TA, error) {
	return r.store.ListTAs(ctx, true)
}

// AddTA registers a new TA. Email is lowercased and trimmed; duplicates
// are rejected.
func (r *Roster) AddTA(ctx context.Context, name, email string) (*TA, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "name is required"}
	}
	if email == "" {
		return nil, &ValidationError{Field: "email", Reason: "email is required"}
	}
	if !emailPattern.MatchString(email) {
		return nil, &ValidationError{Field: "email", Reason: "please enter a valid email address"}
	}

	existing, err := r.store.GetTAByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	ta := TA{
		ID:        TAID(uuid.New().String()),
		Name:      name,
		Email:     email,
		Active:    true,
		CreatedAt: r.now().UTC(),
	}
	if err := r.store.InsertTA(ctx, ta); err != nil {
		return nil, err
	}

	r.log.Info("ta added", zap.String("ta_id", string(ta.ID)), zap.String("email", ta.Email))
	return &ta, nil
}

// RemoveTA deletes a TA with no logged hours, or deactivates one that
// has any, keeping the row so historical entries stay resolvable.
func (r *Roster) RemoveTA(ctx context.Context, id TAID) (RemovalOutcome, error) {
	if id == "" {
		return "", &ValidationError{Field: "id", Reason: "TA id is required"}
	}

	ta, err := r.store.GetTA(ctx, id)
	if err != nil {
		return "", err
	}
	if ta == nil {
		return "", ErrTANotFound
	}

	hasHours, err := r.store.HasEntries(ctx, id)
	if err != nil {
		return "", err
	}

	if hasHours {
		if err := r.store.DeactivateTA(ctx, id); err != nil {
			return "", err
		}
		r.log.Info("ta deactivated", zap.String("ta_id", string(id)))
		return RemovalDeactivated, nil
	}

	if err := r.store.DeleteTA(ctx, id); err != nil {
		return "", err
	}
	r.log.Info("ta deleted", zap.String("ta_id", string(id)))
	return RemovalDeleted, nil
}
