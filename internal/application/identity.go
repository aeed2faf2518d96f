package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/studio-scheduler/internal/persistence"
)

// instructorLookup is one strategy for turning an instructor id into a
// recipient. Strategies are tried in order and the first hit wins; a miss is
// persistence.ErrNotFound, anything else aborts the chain.
type instructorLookup interface {
	Lookup(ctx context.Context, instructorID string) (Recipient, error)
}

type instructorLookupFunc func(ctx context.Context, instructorID string) (Recipient, error)

func (f instructorLookupFunc) Lookup(ctx context.Context, instructorID string) (Recipient, error) {
	return f(ctx, instructorID)
}

// InstructorResolver finds an instructor's contact details across the stores
// instructor data historically lives in. The primary identity table is
// consulted first, then the secondary profile table.
type InstructorResolver struct {
	lookups []instructorLookup
	logger  *slog.Logger
}

// NewInstructorResolver builds the standard lookup chain over the identity
// repository.
func NewInstructorResolver(identities persistence.IdentityRepository, logger *slog.Logger) *InstructorResolver {
	return &InstructorResolver{
		lookups: []instructorLookup{
			identityLookup{identities: identities},
			profileLookup{identities: identities},
		},
		logger: defaultLogger(logger),
	}
}

// Resolve walks the lookup chain. It returns ErrNotFound only when every
// strategy misses.
func (r *InstructorResolver) Resolve(ctx context.Context, instructorID string) (Recipient, error) {
	logger := serviceLogger(ctx, r.logger, "recipients", "resolve_instructor", "instructor_id", instructorID)

	for _, lookup := range r.lookups {
		recipient, err := lookup.Lookup(ctx, instructorID)
		if err == nil {
			return recipient, nil
		}
		if errors.Is(err, persistence.ErrNotFound) {
			continue
		}
		return Recipient{}, err
	}

	logger.WarnContext(ctx, "instructor not found in any identity source")
	return Recipient{}, ErrNotFound
}

type identityLookup struct {
	identities persistence.IdentityRepository
}

func (l identityLookup) Lookup(ctx context.Context, instructorID string) (Recipient, error) {
	identity, err := l.identities.GetIdentity(ctx, instructorID)
	if err != nil {
		return Recipient{}, err
	}
	return recipientFromIdentity(identity), nil
}

type profileLookup struct {
	identities persistence.IdentityRepository
}

func (l profileLookup) Lookup(ctx context.Context, instructorID string) (Recipient, error) {
	profile, err := l.identities.GetInstructorProfile(ctx, instructorID)
	if err != nil {
		return Recipient{}, err
	}
	return Recipient{
		ID:          profile.IdentityID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
	}, nil
}

func recipientFromIdentity(identity persistence.Identity) Recipient {
	recipient := Recipient{
		ID:          identity.ID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
	}
	if identity.Timezone != nil {
		recipient.Timezone = *identity.Timezone
	}
	return recipient
}
