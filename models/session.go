// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package models

import "time"

// Session describes one open connection to the remote ledger service.
// Exactly one session is active at a time; it is opened at the start of a
// sync cycle and closed exactly once when the cycle ends.
type Session struct {
	// ID is a process-local identifier for this session, used to correlate
	// log entries across the cycle. It has no meaning to the server.
	ID string

	// OpenedAt is the local time the session was established.
	OpenedAt time.Time

	// TokenExpiresAt is the expiry of the session's bearer token when the
	// token is a JWT with an "exp" claim. Zero for opaque tokens.
	TokenExpiresAt time.Time
}
