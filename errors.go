package zipkit

import "github.com/meniny/zipkit/internal/zerrors"

// Error kinds surfaced by the core engine, as tabulated in the public
// error handling design. Every return site wraps one of these with
// fmt.Errorf("...: %w", err) so callers can still match with errors.Is
// while getting a specific message.
var (
	// ErrUnreadableArchive covers a missing EOCD, malformed structure
	// signatures, or an I/O read error while opening or scanning.
	ErrUnreadableArchive = zerrors.ErrUnreadableArchive

	// ErrUnwritableArchive covers a Read-only session, a target file that
	// is not writable, or a Create target that already exists.
	ErrUnwritableArchive = zerrors.ErrUnwritableArchive

	// ErrInvalidEntryPath covers a path that cannot be encoded in UTF-8 or
	// CP437, or that is empty.
	ErrInvalidEntryPath = zerrors.ErrInvalidEntryPath

	// ErrInvalidCompressionMethod covers a non-{Store, Deflate} method on
	// an entry being extracted.
	ErrInvalidCompressionMethod = zerrors.ErrInvalidCompressionMethod

	// ErrInvalidStartOfCentralDirectoryOffset is raised when a write would
	// push the central directory offset beyond 2^32 - 1.
	ErrInvalidStartOfCentralDirectoryOffset = zerrors.ErrInvalidStartOfCentralDirectoryOffset

	// ErrMissingEndOfCentralDirectoryRecord covers a scan that exhausted
	// its bound without finding the EOCD signature.
	ErrMissingEndOfCentralDirectoryRecord = zerrors.ErrMissingEndOfCentralDirectoryRecord

	// ErrInvalidCRC32 covers a recomputed CRC over extracted bytes that
	// does not match the recorded CRC.
	ErrInvalidCRC32 = zerrors.ErrInvalidCRC32

	// ErrUnreadableFile and ErrUnwritableFile cover low-level I/O failure
	// on a stream chunk outside the archive's own structures.
	ErrUnreadableFile = zerrors.ErrUnreadableFile
	ErrUnwritableFile = zerrors.ErrUnwritableFile
)
