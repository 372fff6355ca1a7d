package invitation

import "errors"

var (
	// ErrNoAvailability means the employer has no open slots to invite
	// against. Invitations are only issued when something is claimable.
	ErrNoAvailability = errors.New("employer has no bookable availability")

	// ErrTokenNotFound covers unknown and expired tokens alike so callers
	// cannot distinguish the two.
	ErrTokenNotFound = errors.New("booking token not found")
)
