package domain

import "errors"

// ErrInvitationNotFound is returned by a record store when the invitation is not (yet) materialized.
var ErrInvitationNotFound = errors.New("invitation not found")

// ErrConnectionNotFound is returned by a record store when no connection formed from the invitation.
var ErrConnectionNotFound = errors.New("connection not found")

// ErrMissingInvitation is reported when a match exists but the invitation record does not.
var ErrMissingInvitation = errors.New("matched notification without invitation record")

// ErrProcessNotFound is returned when no live process exists for an invitation.
var ErrProcessNotFound = errors.New("process not found")

// ErrProcessRunning is returned when a process is already live for an invitation.
var ErrProcessRunning = errors.New("process already running")

// ErrLockLost is returned when a distributed lock expired or was taken over while held.
var ErrLockLost = errors.New("distributed lock lost")
