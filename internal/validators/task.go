package validators

import "github.com/MKhiriev/go-task-sync/models"

// Field name constants used to specify which fields should be validated.
// These constants are passed to Validate to restrict validation to a subset
// of fields (field-level scoping).
const (
	// FieldID targets the client-generated task identifier.
	FieldID = "id"

	// FieldTitle targets the task title.
	FieldTitle = "title"

	// FieldDescription targets the optional free-form body.
	FieldDescription = "description"

	// FieldStatus targets the workflow status.
	FieldStatus = "status"

	// FieldPriority targets the urgency bucket.
	FieldPriority = "priority"

	// FieldTags targets the tag list.
	FieldTags = "tags"

	// FieldTimestamps targets CreatedAt/UpdatedAt.
	FieldTimestamps = "timestamps"

	// FieldVectorClock targets the causality clock.
	FieldVectorClock = "vector_clock"

	// FieldKind targets the kind of a pending operation.
	FieldKind = "kind"

	// FieldPayload targets the payload of a pending operation.
	FieldPayload = "payload"
)

const (
	maxTitleLength       = 500
	maxDescriptionLength = 10_000
	maxTags              = 50
	maxIDLength          = 128
)

var allowedStatuses = []models.TaskStatus{
	models.TaskStatusTodo,
	models.TaskStatusInProgress,
	models.TaskStatusDone,
}

var allowedPriorities = []models.TaskPriority{
	models.TaskPriorityLow,
	models.TaskPriorityMedium,
	models.TaskPriorityHigh,
	models.TaskPriorityUrgent,
}

var allowedOperationKinds = []models.OperationKind{
	models.OperationCreate,
	models.OperationUpdate,
	models.OperationDelete,
}
