package domain

import "time"

// Permission is the durable record of a connector handshake decision for a
// requesting origin (scheme+host). Only approvals are meant to be stored:
// a denial ends the current handshake but is not remembered as a standing
// denial, so a later enable call prompts again.
type Permission struct {
	Origin    string
	Approved  bool
	DecidedAt time.Time
}

// NewPermission returns the permission record of a just-taken decision.
func NewPermission(origin string, approved bool) (*Permission, error) {
	if len(origin) <= 0 {
		return nil, ErrNullOrigin
	}
	return &Permission{
		Origin:    origin,
		Approved:  approved,
		DecidedAt: time.Now(),
	}, nil
}
