package syncer

import (
	"context"
	"fmt"
)

// Report lists the two orphan classes a partial create or delete sequence
// can leave behind. Both are tolerated by the listing path; Reconcile exists
// to make them visible separately from ordinary degraded rendering.
type Report struct {
	// OrphanBlobs are blob keys with no metadata row: a registration that
	// failed after upload, a compression rename, or a manual upload.
	OrphanBlobs []string

	// OrphanRecords are metadata keys with no blob: a blob delete that
	// failed after the row was authorized away would be the inverse case;
	// in practice this class comes from blob deletes outside the protocol
	// and from the compressed-name divergence.
	OrphanRecords []string
}

// Reconcile cross-checks the two stores and reports both orphan classes.
// It is read-only: surfacing the orphans is this system's job, deciding what
// to do with them is the operator's.
func (s *Synchronizer) Reconcile(ctx context.Context) (*Report, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	objects, err := s.store.List(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}

	records, err := s.meta.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing metadata: %w", err)
	}

	blobKeys := make(map[string]struct{}, len(objects))
	for _, o := range objects {
		blobKeys[o.Key] = struct{}{}
	}
	recordKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		recordKeys[r.Key] = struct{}{}
	}

	report := &Report{}
	for _, o := range objects {
		if _, ok := recordKeys[o.Key]; !ok {
			report.OrphanBlobs = append(report.OrphanBlobs, o.Key)
		}
	}
	for _, r := range records {
		if _, ok := blobKeys[r.Key]; !ok {
			report.OrphanRecords = append(report.OrphanRecords, r.Key)
		}
	}

	return report, nil
}
