// Package app contains application services and port definitions for the market context.
package app

import (
	"context"

	"github.com/fd1az/triarb/business/market/domain"
)

// SnapshotProvider supplies market snapshots.
type SnapshotProvider interface {
	// Snapshot returns tokens and pools for the given venues. An empty venue
	// list means every venue the provider knows about.
	Snapshot(ctx context.Context, venues []string) (*domain.Snapshot, error)

	// Name identifies the provider in logs and health output.
	Name() string
}
