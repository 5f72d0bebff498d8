package scorevault

import (
	"errors"
	"fmt"
	"strings"

	cst "github.com/attestd/scorevault-contract/contracts/scorevault/scorevaultconst"
)

// Errors returned by ScoreVault contract methods. Use [errors.Is] to check
// them against errors returned by [ContractReader] methods or by [ParseError].
var (
	ErrAlreadyInitialized = errors.New(cst.ErrAlreadyInitialized)
	ErrNotInitialized     = errors.New(cst.ErrNotInitialized)
	ErrInvalidInput       = errors.New(cst.ErrInvalidInput)
	ErrMissingCredential  = errors.New(cst.ErrMissingCredential)
	ErrAlreadyRegistered  = errors.New(cst.ErrAlreadyRegistered)
	ErrUnauthorized       = errors.New(cst.ErrUnauthorized)
	ErrNotFound           = errors.New(cst.ErrNotFound)
	ErrInvariantViolation = errors.New(cst.ErrInvariantViolation)
)

var contractErrors = []error{
	ErrAlreadyInitialized,
	ErrNotInitialized,
	ErrInvalidInput,
	ErrMissingCredential,
	ErrAlreadyRegistered,
	ErrUnauthorized,
	ErrNotFound,
	ErrInvariantViolation,
}

// ParseError recognizes ScoreVault error kind in the VM exception carried by
// err and returns err wrapped into the corresponding Err* value. Errors not
// produced by the contract are returned as is.
func ParseError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	for _, e := range contractErrors {
		if strings.Contains(msg, e.Error()) {
			return fmt.Errorf("%w: %w", e, err)
		}
	}

	return err
}

// ParseFaultException is the same as ParseError but accepts the fault
// exception of an executed transaction, e.g. [state.Execution.FaultException].
//
// [state.Execution.FaultException]: https://pkg.go.dev/github.com/nspcc-dev/neo-go/pkg/core/state#Execution
func ParseFaultException(exception string) error {
	if exception == "" {
		return nil
	}

	return ParseError(errors.New(exception))
}
