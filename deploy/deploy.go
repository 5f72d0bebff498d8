package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/attestd/scorevault-contract/rpc/scorevault"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for ScoreVault deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to the
	// blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)

	// GetApplicationLog returns execution results of the transaction. It returns
	// an error while the transaction is not yet accepted to the chain.
	GetApplicationLog(util.Uint256, *trigger.Type) (*result.ApplicationLog, error)
}

// SetupPrm groups configuration of the ScoreVault contract passed within
// deployment.
type SetupPrm struct {
	// Account allowed to update the contract along with the committee.
	Admin util.Uint160

	// Inclusive bounds of the accepted scores.
	MinScore int64
	MaxScore int64

	// Metadata size limit in bytes.
	MaxMetadataSize int64
}

// Prm groups all parameters of the ScoreVault deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy the contract to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// Contract address depends on it.
	LocalAccount *wallet.Account

	NEF      nef.File
	Manifest manifest.Manifest

	// Optional configuration. If not set, the contract is deployed
	// uninitialized and waits for committee 'setup' call.
	Setup *SetupPrm

	// Interval between transaction state polls. Defaults to one second.
	PollInterval time.Duration
}

const defaultPollInterval = time.Second

// Deploy synchronizes ScoreVault contract from Prm with the chain. Missing
// contract is deployed, contract with different executable is updated (local
// account must be either admin of the contract or the committee), up-to-date
// contract is left as is. Deploy returns on-chain address of the contract.
//
// Deploy waits for the sent transaction to be accepted and fails if its
// execution faults.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	addr := state.CreateContractHash(prm.LocalAccount.ScriptHash(), prm.NEF.Checksum, prm.Manifest.Name)
	l := prm.Logger.With(zap.Stringer("address", addr))

	onChain, err := prm.Blockchain.GetContractStateByHash(addr)
	if err != nil && !isErrContractNotFound(err) {
		return util.Uint160{}, fmt.Errorf("read on-chain state of the contract: %w", err)
	}

	if onChain != nil && onChain.NEF.Checksum == prm.NEF.Checksum {
		l.Info("ScoreVault contract is already up-to-date")
		return addr, nil
	}

	localActor, err := actor.NewTuned(prm.Blockchain, []actor.SignerAccount{{
		Signer: transaction.Signer{
			Account: prm.LocalAccount.ScriptHash(),
			Scopes:  transaction.CalledByEntry,
		},
		Account: prm.LocalAccount,
	}}, actor.Options{
		CheckerModifier: scoreVaultTransactionModifier(prm.Blockchain.GetBlockCount),
	})
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	var (
		txHash util.Uint256
		vub    uint32
	)

	if onChain == nil {
		l.Info("ScoreVault contract is missing on the chain, deploying...")

		txHash, vub, err = management.New(localActor).Deploy(&prm.NEF, &prm.Manifest, setupArgs(prm.Setup))
		if err != nil {
			return util.Uint160{}, fmt.Errorf("send contract deployment transaction: %w", err)
		}
	} else {
		l.Info("ScoreVault contract needs to be updated",
			zap.Uint32("on-chain checksum", onChain.NEF.Checksum),
			zap.Uint32("local checksum", prm.NEF.Checksum))

		rawNEF, err := prm.NEF.Bytes()
		if err != nil {
			return util.Uint160{}, fmt.Errorf("encode contract NEF: %w", err)
		}

		rawManifest, err := json.Marshal(prm.Manifest)
		if err != nil {
			return util.Uint160{}, fmt.Errorf("encode contract manifest into JSON: %w", err)
		}

		txHash, vub, err = scorevault.New(localActor, addr).Update(rawNEF, rawManifest, nil)
		if err != nil {
			return util.Uint160{}, fmt.Errorf("send contract update transaction: %w", scorevault.ParseError(err))
		}
	}

	l.Info("transaction sent, waiting for acceptance...",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	pollInterval := prm.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	err = awaitTransaction(ctx, prm.Blockchain, txHash, vub, pollInterval)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("await transaction %s: %w", txHash.StringLE(), err)
	}

	l.Info("ScoreVault contract successfully synchronized with the chain")

	return addr, nil
}

// setupArgs builds deployment data of the contract.
func setupArgs(prm *SetupPrm) any {
	if prm == nil {
		return nil
	}

	return []any{
		prm.Admin,
		big.NewInt(prm.MinScore),
		big.NewInt(prm.MaxScore),
		big.NewInt(prm.MaxMetadataSize),
	}
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}

// txWatcher is a subset of Blockchain used to watch transaction state.
type txWatcher interface {
	GetApplicationLog(util.Uint256, *trigger.Type) (*result.ApplicationLog, error)
	GetBlockCount() (uint32, error)
}

var errTransactionExpired = errors.New("transaction expired")

// awaitTransaction polls the chain until transaction is accepted or expired.
// FAULT execution is returned as an error recognizable by [scorevault.ParseError].
func awaitTransaction(ctx context.Context, b txWatcher, txHash util.Uint256, vub uint32, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		appLog, err := b.GetApplicationLog(txHash, nil)
		if err == nil {
			if len(appLog.Executions) == 0 {
				return errors.New("missing execution results")
			}

			exec := appLog.Executions[0]
			if exec.VMState != vmstate.Halt {
				return fmt.Errorf("execution finished with %s state: %w",
					exec.VMState, scorevault.ParseFaultException(exec.FaultException))
			}

			return nil
		}

		blockCount, err := b.GetBlockCount()
		if err == nil && blockCount > vub+1 {
			return errTransactionExpired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// returns actor.TransactionCheckerModifier which checks that invocation
// finished with 'HALT' state and, if so, sets transaction's nonce and
// ValidUntilBlock to 100*N and 100*(N+1) correspondingly, where
// 100*N <= current height < 100*(N+1). Equal calls made by different
// processes within the same window produce the same transaction.
func scoreVaultTransactionModifier(getBlockCount func() (uint32, error)) actor.TransactionCheckerModifier {
	return func(r *result.Invoke, tx *transaction.Transaction) error {
		err := actor.DefaultCheckerModifier(r, tx)
		if err != nil {
			return err
		}

		blockCount, err := getBlockCount()
		if err != nil {
			return fmt.Errorf("get chain height: %w", err)
		}

		var curHeight uint32
		if blockCount > 0 {
			curHeight = blockCount - 1
		}

		const span = 100
		n := curHeight / span

		tx.Nonce = n * span

		if math.MaxUint32-span > tx.Nonce {
			tx.ValidUntilBlock = tx.Nonce + span
		} else {
			tx.ValidUntilBlock = math.MaxUint32
		}

		return nil
	}
}
