// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
)

type RSVPStore interface {
	// PutRSVP upserts the full record, last write wins.
	PutRSVP(context.Context, *model.RSVP) error
	// DeleteRSVP is idempotent, removing an absent id is not an error.
	DeleteRSVP(context.Context, uuid.UUID) error
	ListRSVPs(context.Context) ([]*model.RSVP, error)
	GetRSVPByID(context.Context, uuid.UUID) (*model.RSVP, error)
}
