package activity

// ListOptions provides filtering options for listing activity.
type ListOptions struct {
	ProjectID string
	ObjectID  *string
	Types     []Type
	Limit     int
	Offset    int
}
