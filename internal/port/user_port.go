package port

import (
	"context"

	"github.com/agrohub/marketplace/internal/domain"
)

type UserRepository interface {
	GetUser(ctx context.Context, userID int64) (domain.User, error)

	// ListCompanyVendorIDs returns ids of all vendor accounts grouped under
	// the company, the querying vendor included.
	ListCompanyVendorIDs(ctx context.Context, companyID int64) ([]int64, error)
}
