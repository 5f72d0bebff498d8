package deploy

import (
	"context"
	"errors"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/attestd/scorevault-contract/rpc/scorevault"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestScoreVaultTransactionModifier(t *testing.T) {
	t.Run("invalid invocation result state", func(t *testing.T) {
		var res result.Invoke
		res.State = "FAULT" // any non-HALT

		err := scoreVaultTransactionModifier(func() (uint32, error) { return 1, nil })(&res, new(transaction.Transaction))
		require.Error(t, err)
	})

	var validRes result.Invoke
	validRes.State = "HALT"

	t.Run("height failure", func(t *testing.T) {
		m := scoreVaultTransactionModifier(func() (uint32, error) { return 0, errors.New("any") })
		require.Error(t, m(&validRes, new(transaction.Transaction)))
	})

	for _, tc := range []struct {
		blockCount    uint32
		expectedNonce uint32
		expectedVUB   uint32
	}{
		{blockCount: 0, expectedNonce: 0, expectedVUB: 100},
		{blockCount: 1, expectedNonce: 0, expectedVUB: 100},
		{blockCount: 100, expectedNonce: 0, expectedVUB: 100},
		{blockCount: 101, expectedNonce: 100, expectedVUB: 200},
		{blockCount: 200, expectedNonce: 100, expectedVUB: 200},
		{blockCount: 201, expectedNonce: 200, expectedVUB: 300},
		{blockCount: math.MaxUint32 - 49, expectedNonce: 100 * (math.MaxUint32 / 100), expectedVUB: math.MaxUint32},
	} {
		m := scoreVaultTransactionModifier(func() (uint32, error) { return tc.blockCount, nil })

		var tx transaction.Transaction

		err := m(&validRes, &tx)
		require.NoError(t, err, tc)
		require.EqualValues(t, tc.expectedNonce, tx.Nonce, tc)
		require.EqualValues(t, tc.expectedVUB, tx.ValidUntilBlock, tc)
	}
}

type testChain struct {
	// nil, methods sending transactions are not expected to be called
	actor.RPCActor

	contract    *state.Contract
	contractErr error

	appLog       *result.ApplicationLog
	pendingPolls int
	polls        int

	blockCount uint32
}

// GetContractStateByHash implements [Blockchain] interface.
func (c *testChain) GetContractStateByHash(util.Uint160) (*state.Contract, error) {
	return c.contract, c.contractErr
}

// GetApplicationLog implements [Blockchain] interface.
func (c *testChain) GetApplicationLog(util.Uint256, *trigger.Type) (*result.ApplicationLog, error) {
	c.polls++
	if c.appLog == nil || c.polls <= c.pendingPolls {
		return nil, errors.New("Unknown transaction or container")
	}

	return c.appLog, nil
}

// GetBlockCount implements [Blockchain] interface.
func (c *testChain) GetBlockCount() (uint32, error) {
	return c.blockCount, nil
}

func newTestPrm(t *testing.T, b Blockchain) Prm {
	acc, err := wallet.NewAccount()
	require.NoError(t, err)

	return Prm{
		Logger:       zaptest.NewLogger(t),
		Blockchain:   b,
		LocalAccount: acc,
		NEF:          nef.File{Checksum: 42},
		Manifest:     *manifest.NewManifest("ScoreVault"),
	}
}

func TestDeploy(t *testing.T) {
	t.Run("up-to-date", func(t *testing.T) {
		chain := &testChain{
			contract: &state.Contract{ContractBase: state.ContractBase{NEF: nef.File{Checksum: 42}}},
		}
		prm := newTestPrm(t, chain)

		addr, err := Deploy(context.Background(), prm)
		require.NoError(t, err)
		require.Equal(t, state.CreateContractHash(prm.LocalAccount.ScriptHash(), 42, "ScoreVault"), addr)
		require.Zero(t, chain.polls)
	})

	t.Run("chain failure", func(t *testing.T) {
		chain := &testChain{contractErr: errors.New("connection lost")}

		_, err := Deploy(context.Background(), newTestPrm(t, chain))
		require.ErrorIs(t, err, chain.contractErr)
	})

	t.Run("missing contract", func(t *testing.T) {
		require.True(t, isErrContractNotFound(errors.New("Unknown contract")))
		require.False(t, isErrContractNotFound(errors.New("connection lost")))
	})
}

func TestSetupArgs(t *testing.T) {
	require.Nil(t, setupArgs(nil))

	admin := util.Uint160{1, 2, 3}
	args := setupArgs(&SetupPrm{
		Admin:           admin,
		MinScore:        -5,
		MaxScore:        100,
		MaxMetadataSize: 256,
	})

	require.Equal(t, []any{admin, big.NewInt(-5), big.NewInt(100), big.NewInt(256)}, args)
}

func TestAwaitTransaction(t *testing.T) {
	const interval = time.Millisecond

	var txHash = util.Uint256{1, 2, 3}

	newLog := func(st vmstate.State, exception string) *result.ApplicationLog {
		return &result.ApplicationLog{
			Container: txHash,
			Executions: []state.Execution{{
				Trigger:        trigger.Application,
				VMState:        st,
				FaultException: exception,
			}},
		}
	}

	t.Run("accepted", func(t *testing.T) {
		chain := &testChain{appLog: newLog(vmstate.Halt, ""), pendingPolls: 3}

		err := awaitTransaction(context.Background(), chain, txHash, 100, interval)
		require.NoError(t, err)
		require.Equal(t, 4, chain.polls)
	})

	t.Run("fault", func(t *testing.T) {
		chain := &testChain{
			appLog: newLog(vmstate.Fault, `at instruction 100 (THROW): unhandled exception: "Unauthorized: only admin or committee can update contract"`),
		}

		err := awaitTransaction(context.Background(), chain, txHash, 100, interval)
		require.ErrorIs(t, err, scorevault.ErrUnauthorized)
	})

	t.Run("no executions", func(t *testing.T) {
		chain := &testChain{appLog: &result.ApplicationLog{Container: txHash}}

		err := awaitTransaction(context.Background(), chain, txHash, 100, interval)
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		chain := &testChain{blockCount: 102}

		err := awaitTransaction(context.Background(), chain, txHash, 100, interval)
		require.ErrorIs(t, err, errTransactionExpired)
	})

	t.Run("context", func(t *testing.T) {
		chain := &testChain{blockCount: 50}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := awaitTransaction(ctx, chain, txHash, 100, interval)
		require.ErrorIs(t, err, context.Canceled)
	})
}
