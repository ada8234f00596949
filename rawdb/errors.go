package rawdb

import "errors"

// ErrInvalidFile is returned when an on-disk file exists but its contents
// cannot be parsed (spec §4.C / §7 "Format" errors).
var ErrInvalidFile = errors.New("invalid file")
