package storage

import "depthcurve/internal/model"

// Sink receives computed curve snapshots.
type Sink interface {
	PutCurveSnapshot(snapshot model.CurveSnapshot) error
}
