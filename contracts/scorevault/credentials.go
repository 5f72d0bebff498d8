package scorevault

import (
	"github.com/attestd/scorevault-contract/common"
	cst "github.com/attestd/scorevault-contract/contracts/scorevault/scorevaultconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/convert"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/crypto"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Credential is a salted digest of a viewing key commitment.
type Credential struct {
	Salt   []byte
	Digest []byte
}

const (
	credentialKeyPrefix = 'c'

	digestSize = 32
)

func credentialKey(owner interop.Hash160) []byte {
	return append([]byte{credentialKeyPrefix}, owner...)
}

func hasCredential(ctx storage.Context, owner interop.Hash160) bool {
	return storage.Get(ctx, credentialKey(owner)) != nil
}

// putCredential stores a fresh salt and the salted digest of the commitment,
// overwriting the previous credential.
func putCredential(ctx storage.Context, owner interop.Hash160, keyCommitment []byte) {
	if keyCommitment == nil || len(keyCommitment) != cst.KeyCommitmentSize {
		panic(cst.ErrInvalidInput + ": incorrect viewing key commitment")
	}

	salt := []byte(crypto.Sha256(append(convert.ToBytes(runtime.GetRandom()), owner...)))

	common.SetSerialized(ctx, credentialKey(owner), Credential{
		Salt:   salt,
		Digest: credentialDigest(salt, keyCommitment),
	})
}

// verifyCredential checks key against the stored credential of the owner.
// Unknown owners are checked against a serialized zero credential, both cases
// execute the same instructions and syscalls, so neither the result nor the
// consumed GAS reveal whether the owner exists.
func verifyCredential(ctx storage.Context, owner interop.Hash160, key []byte) bool {
	if key == nil {
		key = []byte{}
	}

	commitment := []byte(crypto.Sha256(key))

	zero := std.Serialize(Credential{
		Salt:   make([]byte, digestSize),
		Digest: make([]byte, digestSize),
	})

	data := storage.Get(ctx, credentialKey(owner))
	found := data != nil

	// map lookup selects the credential without branching
	src := map[bool]any{true: data, false: zero}[found]
	cred := std.Deserialize(src.([]byte)).(Credential)

	match := common.ConstantTimeEqual(credentialDigest(cred.Salt, commitment), cred.Digest)

	// zero digest is never matched, unknown owners fail on match first
	return match && found
}

func deleteCredential(ctx storage.Context, owner interop.Hash160) {
	storage.Delete(ctx, credentialKey(owner))
}

func credentialDigest(salt, keyCommitment []byte) []byte {
	return []byte(crypto.Sha256(append(salt, keyCommitment...)))
}
