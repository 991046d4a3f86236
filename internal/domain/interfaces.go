package domain

import "context"

// SnapshotSource supplies record snapshots for a tenant.
// This interface keeps the analytics service independent of the record store implementation.
type SnapshotSource interface {
	// LoadSnapshot bulk-reads every time record, job, worker and job type of the tenant.
	LoadSnapshot(ctx context.Context, tenantID string) (Snapshot, error)

	// SnapshotVersion returns an opaque string that changes whenever the tenant's records change.
	SnapshotVersion(ctx context.Context, tenantID string) (string, error)
}
