package scorevaultconst

// Error kinds. Every failure of the ScoreVault contract is a VM exception
// whose message starts with one of these values, so off-chain callers can
// classify it.
const (
	// ErrAlreadyInitialized is returned on repeated setup.
	ErrAlreadyInitialized = "AlreadyInitialized"
	// ErrNotInitialized is returned when the contract is used before setup.
	ErrNotInitialized = "NotInitialized"
	// ErrInvalidInput is returned for out of bounds scores, oversized
	// metadata and malformed arguments.
	ErrInvalidInput = "InvalidInput"
	// ErrMissingCredential is returned on the first submission of an identity
	// made without a viewing key commitment.
	ErrMissingCredential = "MissingCredential"
	// ErrAlreadyRegistered is returned on explicit registration of a viewing
	// key for an identity that already has one.
	ErrAlreadyRegistered = "AlreadyRegistered"
	// ErrUnauthorized is returned for missing witnesses and for viewing keys
	// that do not match, including keys of unknown identities.
	ErrUnauthorized = "Unauthorized"
	// ErrNotFound is returned when an authenticated identity has no record.
	ErrNotFound = "NotFound"
	// ErrInvariantViolation is returned when stored statistics do not match
	// stored records. The call is aborted.
	ErrInvariantViolation = "InvariantViolation"
)

const (
	// KeyCommitmentSize is the size of a viewing key commitment (SHA-256 of
	// the viewing key) accepted by the contract.
	KeyCommitmentSize = 32

	// MaxMetadataLimit is the maximum configurable record metadata size.
	MaxMetadataLimit = 65535

	// MaxScoreSpan is the maximum difference between configured score bounds.
	MaxScoreSpan = 1<<63 - 1
)
