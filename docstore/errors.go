package docstore

import "errors"

// ErrNotFound marks a missing timeline document; the worker treats it as a
// fatal job error.
var ErrNotFound = errors.New("document not found")
