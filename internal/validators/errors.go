package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidTaskID        = errors.New("invalid task id")
	ErrEmptyTitle           = errors.New("title is required")
	ErrTitleTooLong         = errors.New("title is too long")
	ErrDescriptionTooLong   = errors.New("description is too long")
	ErrInvalidStatus        = errors.New("invalid task status")
	ErrInvalidPriority      = errors.New("invalid task priority")
	ErrInvalidTimestamps    = errors.New("invalid task timestamps")
	ErrInvalidVectorClock   = errors.New("invalid vector clock")
	ErrTooManyTags          = errors.New("too many tags")
	ErrInvalidOperationKind = errors.New("invalid operation kind")
	ErrInvalidPayload       = errors.New("payload must be set iff operation is not a delete")
)
