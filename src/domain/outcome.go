package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeploymentOutcome is one completed deployment as recorded in the
// ledger. Entries are append-only and never change after creation.
type DeploymentOutcome struct {
	ID         uuid.UUID `json:"id"`
	Strategy   Strategy  `json:"strategy"`
	RiskScore  float64   `json:"risk_score"`
	Succeeded  bool      `json:"succeeded"`
	RolledBack bool      `json:"rolled_back"`
	CreatedAt  time.Time `json:"created_at"`
}

// Failed reports whether this outcome counts against the failure rate.
// A rollback counts even when the deployment itself reported success.
func (self DeploymentOutcome) Failed() bool {
	return !self.Succeeded || self.RolledBack
}
