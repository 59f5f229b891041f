package pkg

import "errors"

// ErrNotFound is returned by stores when a conversation, specialist or
// triage record does not exist.
var ErrNotFound = errors.New("not found")
