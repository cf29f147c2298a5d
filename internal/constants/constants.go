package constants

// Hash algorithms
const (
	HashAlgorithmSHA1   = "sha1"
	HashAlgorithmSHA256 = "sha256"
	HashAlgorithmSHA512 = "sha512"
	HashAlgorithmBLAKE3 = "blake3"
)

// File permissions
const (
	SecureDirPerms    = 0o700 // Owner read/write/execute only
	SecureFilePerms   = 0o600 // Owner read/write only
	StandardDirPerms  = 0o755 // Standard directory permissions
	StandardFilePerms = 0o644 // Standard file permissions
)

// Scan tuning defaults
const (
	// DefaultChunkSize is the read size used while hashing and comparing files.
	DefaultChunkSize = 64 * 1024

	// DefaultCheckpointInterval is the number of processed files between
	// index flushes and snapshot writes.
	DefaultCheckpointInterval = 10

	// MaxPlacementAttempts bounds the numeric disambiguation loop when a
	// destination filename is taken.
	MaxPlacementAttempts = 1000

	// MinFreeSpace is the free space required on the output volume before a
	// scan is allowed to start.
	MinFreeSpace = 100 * 1024 * 1024
)

// Output directory names created under the output root
const (
	UniqueDirName    = "UniqueFiles"
	DuplicateDirName = "DuplicateFiles"
)

// Persisted state filenames
const (
	IndexDBName      = "hashes.db"
	SnapshotFileName = "hashes.json"
	LogFileName      = "stillsuit.log"
)
