// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package db

import "errors"

var (
	ErrRSVPNotFound     = errors.New("rsvp not found")
	ErrIdentityNotFound = errors.New("identity not found")
)
