//go:generate mockgen -source=$GOFILE -destination=mocks/$GOFILE
package secrets

import (
	"context"

	"github.com/grezar/secretreplace/roles"
)

// Fetcher returns the secret stored at path for the given environment.
type Fetcher interface {
	Fetch(ctx context.Context, path string, env roles.Environment) (string, error)
}
