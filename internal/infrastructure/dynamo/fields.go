package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUpdatedAt    = "updated_at"
	fieldIsRead       = "is_read"
	fieldStatus       = "status"
	fieldPasswordHash = "password_hash"
	fieldMaterialLink = "material_link"
	fieldExtraFields  = "extra_fields"
)
