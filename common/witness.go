package common

import "github.com/nspcc-dev/neo-go/pkg/interop/runtime"

// CheckOwnerWitness checks witness of the passed owner account. It panics
// with panicMsg on fail.
func CheckOwnerWitness(owner []byte, panicMsg string) {
	if !runtime.CheckWitness(owner) {
		panic(panicMsg)
	}
}

// CheckCommitteeWitness checks that the invocation is signed by the Neo
// committee. It panics with panicMsg on fail.
func CheckCommitteeWitness(panicMsg string) {
	if !runtime.CheckWitness(CommitteeAddress()) {
		panic(panicMsg)
	}
}
