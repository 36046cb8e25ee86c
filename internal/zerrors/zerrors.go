// Package zerrors holds the sentinel errors shared by every layer of the
// archive engine, so internal packages and the public facade can both
// refer to the same identity without an import cycle.
package zerrors

import "errors"

var (
	ErrUnreadableArchive                     = errors.New("zipkit: unreadable archive")
	ErrUnwritableArchive                      = errors.New("zipkit: unwritable archive")
	ErrInvalidEntryPath                       = errors.New("zipkit: invalid entry path")
	ErrInvalidCompressionMethod               = errors.New("zipkit: invalid compression method")
	ErrInvalidStartOfCentralDirectoryOffset   = errors.New("zipkit: invalid start of central directory offset")
	ErrMissingEndOfCentralDirectoryRecord     = errors.New("zipkit: missing end of central directory record")
	ErrInvalidCRC32                           = errors.New("zipkit: invalid CRC-32")
	ErrUnreadableFile                         = errors.New("zipkit: unreadable file")
	ErrUnwritableFile                         = errors.New("zipkit: unwritable file")
)
