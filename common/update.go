package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/neo"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// CommitteeAddress returns the `M = N/2+1` multi-signature account of the
// current Neo committee.
func CommitteeAddress() []byte {
	committee := neo.GetCommittee()

	keys := []interop.PublicKey{}
	for _, key := range committee {
		keys = append(keys, key)
	}

	return contract.CreateMultisigAccount(len(keys)/2+1, keys)
}

// HasUpdateAccess returns true if contract can be updated. The contract can be
// updated by its admin (if set) or by the committee.
func HasUpdateAccess(admin []byte) bool {
	if admin != nil && len(admin) == interop.Hash160Len && runtime.CheckWitness(admin) {
		return true
	}

	return runtime.CheckWitness(CommitteeAddress())
}
