package retrieve

import "errors"

var errNotConfigured = errors.New("source not configured")
