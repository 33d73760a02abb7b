package dynamo

// DynamoDB attribute names used in key conditions and update expressions.
const (
	fieldUserID        = "user_id"
	fieldUpdatedAt     = "updated_at"
	fieldIsRead        = "is_read"
	fieldLastTrainedAt = "last_trained_at"
	fieldStream        = "stream"
	fieldSortKey       = "sort_key"
)

// GSI names.
const (
	indexUsername         = "username-index"
	indexEmail            = "email-index"
	indexAlarmUser        = "user_id-index"
	indexNotificationUser = "user_id-created_at-index"
)
