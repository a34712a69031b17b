// Package utils provides common utility functions for the kiosk-sync
// application. It includes type coercion helpers for values decoded from
// loosely-typed remote JSON payloads.
package utils
