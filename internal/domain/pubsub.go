package domain

import (
	"context"
)

// ViewPublisher pushes rendered views to whoever is watching the box.
type ViewPublisher interface {
	PublishView(ctx context.Context, view View) error
}
