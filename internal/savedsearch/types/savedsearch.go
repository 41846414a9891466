package types

import (
	"time"

	listingtypes "github.com/lk2023060901/vehicle-discovery/internal/listing/types"
)

// MaxPerPrincipal caps how many searches one principal may keep
const MaxPerPrincipal = 3

// MaxNameLength is measured in runes
const MaxNameLength = 100

// SavedSearch is a persisted criteria snapshot with change-detection state
type SavedSearch struct {
	ID            string
	PrincipalID   string
	Name          string
	Criteria      listingtypes.SearchCriteria
	LastCheckedAt time.Time
	NewMatchCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// View is the API shape of a saved search
type View struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Criteria      listingtypes.RawParams `json:"criteria"`
	LastCheckedAt time.Time              `json:"last_checked_at"`
	NewMatchCount int                    `json:"new_match_count"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// ToView renders s with its criteria in canonical raw form
func (s *SavedSearch) ToView() *View {
	return &View{
		ID:            s.ID,
		Name:          s.Name,
		Criteria:      s.Criteria.Params(),
		LastCheckedAt: s.LastCheckedAt,
		NewMatchCount: s.NewMatchCount,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// CreateRequest is the body of a create call
type CreateRequest struct {
	Name     string                 `json:"name"`
	Criteria listingtypes.RawParams `json:"criteria"`
}

// RenameRequest is the body of a rename call
type RenameRequest struct {
	Name string `json:"name"`
}

// CheckResult reports a change-detection run
type CheckResult struct {
	NewCount      int       `json:"new_count"`
	LastCheckedAt time.Time `json:"last_checked_at"`
}

// SweepSummary totals one CheckAll pass
type SweepSummary struct {
	Checked int `json:"checked"`
	Failed  int `json:"failed"`
	// NewMatches sums NewCount over successful checks
	NewMatches int `json:"new_matches"`
}
