package common

import "github.com/nspcc-dev/neo-go/pkg/interop/native/std"

// Contract versions are encoded as major*1_000_000 + minor*1_000 + patch.
const (
	Version = 0*1_000_000 + 1*1_000 + 0

	// MinUpdateVersion is the oldest deployed version Update migrates from.
	// 0.1.0 is the first storage layout, so every deployed contract is
	// accepted and only redeploying the running version is rejected.
	MinUpdateVersion = 0

	// ErrVersionMismatch is thrown by CheckVersion for versions below
	// MinUpdateVersion.
	ErrVersionMismatch = "unsupported deployed version"

	// ErrAlreadyUpdated is thrown by CheckVersion if the deployed version
	// equals Version.
	ErrAlreadyUpdated = "contract is already of the latest version"
)

// CheckVersion panics unless a contract of version from can be updated to
// Version.
func CheckVersion(from int) {
	if from < MinUpdateVersion {
		panic(ErrVersionMismatch + ": expected >=" + std.Itoa(MinUpdateVersion, 10))
	}
	if from == Version {
		panic(ErrAlreadyUpdated + ": " + std.Itoa(Version, 10))
	}
}

// AppendVersion adds the running version to the update data, _deploy of the
// new code reads it as the last argument.
func AppendVersion(data any) []any {
	if data == nil {
		return []any{Version}
	}
	return append(data.([]any), Version)
}
