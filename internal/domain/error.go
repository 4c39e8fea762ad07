package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("administrator privileges required")

	// Broadcast wizard errors
	ErrNoSession      = errors.New("no wizard session in progress")
	ErrWrongStep      = errors.New("input does not match the current wizard step")
	ErrEmptyMessage   = errors.New("broadcast message must contain text")
	ErrUnknownSegment = errors.New("unknown audience segment")
	ErrEmptyAudience  = errors.New("audience segment has no members")
	ErrBadDateTime    = errors.New("datetime must match DD.MM.YYYY HH:MM")
	ErrPastDateTime   = errors.New("datetime must be in the future")
	ErrBadCron        = errors.New("cron expression must have exactly 5 fields")
	ErrNotDeletable   = errors.New("only pending broadcasts can be deleted")

	// Catalog errors
	ErrCatalogUnavailable = errors.New("course catalog is unreachable")
)
