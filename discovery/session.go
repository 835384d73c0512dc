package discovery

import "github.com/Modeva-Ecommerce/modeva-discovery/models"

// Status is the controller's state.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusLoading     Status = "loading"
	StatusLoadingMore Status = "loadingMore"
	StatusError       Status = "error"
)

// Busy reports whether a fetch is in flight.
func (s Status) Busy() bool {
	return s == StatusLoading || s == StatusLoadingMore
}

// SnapshotError is the user-facing view of the last failure.
type SnapshotError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Page    int       `json:"page"`
}

// Snapshot is a point-in-time copy of a discovery session, safe to hand to
// the presentation layer.
type Snapshot struct {
	Items       []models.StorefrontProduct `json:"items"`
	Status      Status                     `json:"status"`
	HasMore     bool                       `json:"hasMore"`
	TotalCount  int                        `json:"totalCount"`
	TotalPages  int                        `json:"totalPages"`
	CurrentPage int                        `json:"currentPage"`
	Request     models.SearchRequest       `json:"request"`
	Error       *SnapshotError             `json:"error,omitempty"`
}
