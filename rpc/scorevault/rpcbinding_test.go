package scorevault

import (
	"errors"
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

type testInv struct {
	err error
	res *result.Invoke

	method string
	params []any
}

func (t *testInv) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	t.method = operation
	t.params = params
	return t.res, t.err
}

func (t *testInv) MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error) {
	t.method = method
	t.params = params
	return transaction.New([]byte{1}, 0), t.err
}

func (t *testInv) MakeRun(script []byte) (*transaction.Transaction, error) {
	return transaction.New(script, 0), t.err
}

func (t *testInv) MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error) {
	t.method = method
	t.params = params
	return transaction.New([]byte{2}, 0), t.err
}

func (t *testInv) MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error) {
	return transaction.New(script, 0), t.err
}

func (t *testInv) SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error) {
	t.method = method
	t.params = params
	return util.Uint256{1}, 100, t.err
}

func (t *testInv) SendRun(script []byte) (util.Uint256, uint32, error) {
	return util.Uint256{}, 0, t.err
}

func halt(items ...stackitem.Item) *result.Invoke {
	return &result.Invoke{
		State: "HALT",
		Stack: items,
	}
}

func TestReader_GetStats(t *testing.T) {
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	ti.err = errors.New("bad")
	_, err := r.GetStats()
	require.Error(t, err)

	ti.err = nil
	ti.res = halt(stackitem.Make(42))
	_, err = r.GetStats()
	require.Error(t, err)

	ti.res = halt(stackitem.NewStruct([]stackitem.Item{
		stackitem.Make(0),
		stackitem.Make(0),
		stackitem.Null{},
		stackitem.Null{},
	}))
	st, err := r.GetStats()
	require.NoError(t, err)
	require.Equal(t, "getStats", ti.method)
	require.Zero(t, st.Count.Sign())
	require.Zero(t, st.Sum.Sign())
	require.Nil(t, st.Min)
	require.Nil(t, st.Max)

	ti.res = halt(stackitem.NewStruct([]stackitem.Item{
		stackitem.Make(2),
		stackitem.Make(120),
		stackitem.Make(50),
		stackitem.Make(70),
	}))
	st, err = r.GetStats()
	require.NoError(t, err)
	require.EqualValues(t, 2, st.Count.Int64())
	require.EqualValues(t, 120, st.Sum.Int64())
	require.EqualValues(t, 50, st.Min.Int64())
	require.EqualValues(t, 70, st.Max.Int64())
}

func TestReader_GetRecord(t *testing.T) {
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	owner := util.Uint160{9, 8, 7}
	key := []byte("viewing key")

	ti.res = halt(stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(owner.BytesBE()),
		stackitem.Make(50),
		stackitem.NewBuffer([]byte("meta")),
		stackitem.Make(1700000000000),
		stackitem.Make(3),
	}))

	rec, err := r.GetRecord(owner, key)
	require.NoError(t, err)
	require.Equal(t, "getRecord", ti.method)
	require.Equal(t, []any{owner, key}, ti.params)
	require.Equal(t, owner, rec.Owner)
	require.EqualValues(t, 50, rec.Score.Int64())
	require.Equal(t, []byte("meta"), rec.Metadata)
	require.EqualValues(t, 1700000000000, rec.Timestamp.Int64())
	require.EqualValues(t, 3, rec.Sequence.Int64())

	t.Run("invalid owner", func(t *testing.T) {
		ti.res = halt(stackitem.NewStruct([]stackitem.Item{
			stackitem.NewByteArray([]byte{1, 2, 3}),
			stackitem.Make(50),
			stackitem.NewBuffer(nil),
			stackitem.Make(0),
			stackitem.Make(1),
		}))
		_, err := r.GetRecord(owner, key)
		require.Error(t, err)
	})

	t.Run("fault", func(t *testing.T) {
		ti.res = &result.Invoke{
			State:          "FAULT",
			FaultException: `at instruction 120 (THROW): unhandled exception: "Unauthorized"`,
		}
		_, err := r.GetRecord(owner, key)
		require.ErrorIs(t, err, ErrUnauthorized)
		require.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestReader_GetOwnRecord(t *testing.T) {
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	owner := util.Uint160{9, 8, 7}

	ti.res = halt(stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(owner.BytesBE()),
		stackitem.Make(75),
		stackitem.NewBuffer(nil),
		stackitem.Make(1700000000000),
		stackitem.Make(1),
	}))

	rec, err := r.GetOwnRecord(owner)
	require.NoError(t, err)
	require.Equal(t, "getOwnRecord", ti.method)
	require.Equal(t, []any{owner}, ti.params)
	require.Equal(t, owner, rec.Owner)
	require.EqualValues(t, 75, rec.Score.Int64())

	ti.res = &result.Invoke{
		State:          "FAULT",
		FaultException: `at instruction 64 (THROW): unhandled exception: "Unauthorized: owner witness check failed"`,
	}
	_, err = r.GetOwnRecord(owner)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestReader_GetConfig(t *testing.T) {
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	admin := util.Uint160{4, 5, 6}
	ti.res = halt(stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(admin.BytesBE()),
		stackitem.Make(-10),
		stackitem.Make(100),
		stackitem.Make(256),
	}))

	cfg, err := r.GetConfig()
	require.NoError(t, err)
	require.Equal(t, admin, cfg.Admin)
	require.EqualValues(t, -10, cfg.MinScore.Int64())
	require.EqualValues(t, 100, cfg.MaxScore.Int64())
	require.EqualValues(t, 256, cfg.MaxMetadataSize.Int64())

	ti.res = &result.Invoke{
		State:          "FAULT",
		FaultException: `at instruction 40 (THROW): unhandled exception: "NotInitialized"`,
	}
	_, err = r.GetConfig()
	require.ErrorIs(t, err, ErrNotInitialized)
	require.NotErrorIs(t, err, ErrAlreadyInitialized)
}

func TestContract_Methods(t *testing.T) {
	ti := new(testInv)
	c := New(ti, util.Uint160{1, 2, 3})

	owner := util.Uint160{7}
	commitment := make([]byte, 32)

	h, vub, err := c.Submit(owner, big.NewInt(50), []byte("meta"), commitment)
	require.NoError(t, err)
	require.Equal(t, util.Uint256{1}, h)
	require.EqualValues(t, 100, vub)
	require.Equal(t, "submit", ti.method)
	require.Equal(t, []any{owner, big.NewInt(50), []byte("meta"), commitment}, ti.params)

	_, err = c.RotateCredentialTransaction(owner, []byte("old"), commitment)
	require.NoError(t, err)
	require.Equal(t, "rotateCredential", ti.method)

	_, err = c.RevokeUnsigned(owner, []byte("key"))
	require.NoError(t, err)
	require.Equal(t, "revoke", ti.method)

	_, _, err = c.RegisterCredential(owner, commitment)
	require.NoError(t, err)
	require.Equal(t, "registerCredential", ti.method)

	_, _, err = c.Setup(owner, big.NewInt(0), big.NewInt(100), big.NewInt(64))
	require.NoError(t, err)
	require.Equal(t, "setup", ti.method)
	require.Len(t, ti.params, 4)
}
