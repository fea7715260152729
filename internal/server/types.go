// Package server defines shared delivery types and utility helpers that are
// reused across client and hub logic.
package server

import "strings"

// Delivery is one encoded wire frame together with its audience. When All is
// set the frame goes to every registered client; otherwise it goes to the
// listed connection ids only.
type Delivery struct {
	All     bool
	ConnIDs []string
	Payload []byte
}

// isExpectedCloseError checks if an error is expected during connection
// closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
