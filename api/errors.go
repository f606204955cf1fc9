// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values shared across streamws packages.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrTransportClosed = fmt.Errorf("transport is closed")
)
