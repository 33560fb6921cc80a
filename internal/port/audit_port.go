package port

import (
	"context"

	"github.com/agrohub/marketplace/internal/domain"
)

// AuditSink records a successful mutating action. Invoked after commit,
// best-effort.
type AuditSink interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}
