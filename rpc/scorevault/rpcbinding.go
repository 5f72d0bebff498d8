// Package scorevault contains RPC wrappers for ScoreVault contract.
package scorevault

import (
	"errors"
	"fmt"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"math/big"
)

// Config is a contract-specific scorevault.Config type used by its methods.
type Config struct {
	Admin util.Uint160
	MinScore *big.Int
	MaxScore *big.Int
	MaxMetadataSize *big.Int
}

// Record is a contract-specific scorevault.Record type used by its methods.
type Record struct {
	Owner util.Uint160
	Score *big.Int
	Metadata []byte
	Timestamp *big.Int
	Sequence *big.Int
}

// Stats is a contract-specific scorevault.Stats type used by its methods.
// Min and Max are nil when Count is zero.
type Stats struct {
	Count *big.Int
	Sum *big.Int
	Min *big.Int
	Max *big.Int
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// GetConfig invokes `getConfig` method of contract.
func (c *ContractReader) GetConfig() (*Config, error) {
	return itemToConfig(unwrap.Item(c.invoker.Call(c.hash, "getConfig")))
}

// GetRecord invokes `getRecord` method of contract.
func (c *ContractReader) GetRecord(owner util.Uint160, key []byte) (*Record, error) {
	return itemToRecord(unwrap.Item(c.invoker.Call(c.hash, "getRecord", owner, key)))
}

// GetOwnRecord invokes `getOwnRecord` method of contract.
func (c *ContractReader) GetOwnRecord(owner util.Uint160) (*Record, error) {
	return itemToRecord(unwrap.Item(c.invoker.Call(c.hash, "getOwnRecord", owner)))
}

// GetStats invokes `getStats` method of contract.
func (c *ContractReader) GetStats() (*Stats, error) {
	return itemToStats(unwrap.Item(c.invoker.Call(c.hash, "getStats")))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// RegisterCredential creates a transaction invoking `registerCredential` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RegisterCredential(owner util.Uint160, keyCommitment []byte) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "registerCredential", owner, keyCommitment)
}

// RegisterCredentialTransaction creates a transaction invoking `registerCredential` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RegisterCredentialTransaction(owner util.Uint160, keyCommitment []byte) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "registerCredential", owner, keyCommitment)
}

// RegisterCredentialUnsigned creates a transaction invoking `registerCredential` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RegisterCredentialUnsigned(owner util.Uint160, keyCommitment []byte) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "registerCredential", nil, owner, keyCommitment)
}

// Revoke creates a transaction invoking `revoke` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Revoke(owner util.Uint160, key []byte) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "revoke", owner, key)
}

// RevokeTransaction creates a transaction invoking `revoke` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RevokeTransaction(owner util.Uint160, key []byte) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "revoke", owner, key)
}

// RevokeUnsigned creates a transaction invoking `revoke` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RevokeUnsigned(owner util.Uint160, key []byte) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "revoke", nil, owner, key)
}

// RotateCredential creates a transaction invoking `rotateCredential` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RotateCredential(owner util.Uint160, oldKey []byte, newKeyCommitment []byte) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "rotateCredential", owner, oldKey, newKeyCommitment)
}

// RotateCredentialTransaction creates a transaction invoking `rotateCredential` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RotateCredentialTransaction(owner util.Uint160, oldKey []byte, newKeyCommitment []byte) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "rotateCredential", owner, oldKey, newKeyCommitment)
}

// RotateCredentialUnsigned creates a transaction invoking `rotateCredential` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RotateCredentialUnsigned(owner util.Uint160, oldKey []byte, newKeyCommitment []byte) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "rotateCredential", nil, owner, oldKey, newKeyCommitment)
}

// Setup creates a transaction invoking `setup` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Setup(admin util.Uint160, minScore *big.Int, maxScore *big.Int, maxMetadataSize *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setup", admin, minScore, maxScore, maxMetadataSize)
}

// SetupTransaction creates a transaction invoking `setup` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SetupTransaction(admin util.Uint160, minScore *big.Int, maxScore *big.Int, maxMetadataSize *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "setup", admin, minScore, maxScore, maxMetadataSize)
}

// SetupUnsigned creates a transaction invoking `setup` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SetupUnsigned(admin util.Uint160, minScore *big.Int, maxScore *big.Int, maxMetadataSize *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "setup", nil, admin, minScore, maxScore, maxMetadataSize)
}

// Submit creates a transaction invoking `submit` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Submit(owner util.Uint160, score *big.Int, metadata []byte, keyCommitment []byte) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "submit", owner, score, metadata, keyCommitment)
}

// SubmitTransaction creates a transaction invoking `submit` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SubmitTransaction(owner util.Uint160, score *big.Int, metadata []byte, keyCommitment []byte) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "submit", owner, score, metadata, keyCommitment)
}

// SubmitUnsigned creates a transaction invoking `submit` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SubmitUnsigned(owner util.Uint160, score *big.Int, metadata []byte, keyCommitment []byte) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "submit", nil, owner, score, metadata, keyCommitment)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", script, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, script, manifest, data)
}

// itemToConfig converts stack item into *Config.
func itemToConfig(item stackitem.Item, err error) (*Config, error) {
	if err != nil {
		return nil, ParseError(err)
	}
	var res = new(Config)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of Config from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *Config) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 4 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	res.Admin, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Admin: %w", err)
	}

	index++
	res.MinScore, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field MinScore: %w", err)
	}

	index++
	res.MaxScore, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field MaxScore: %w", err)
	}

	index++
	res.MaxMetadataSize, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field MaxMetadataSize: %w", err)
	}

	return nil
}

// itemToRecord converts stack item into *Record.
func itemToRecord(item stackitem.Item, err error) (*Record, error) {
	if err != nil {
		return nil, ParseError(err)
	}
	var res = new(Record)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of Record from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *Record) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 5 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	res.Owner, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	index++
	res.Score, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Score: %w", err)
	}

	index++
	res.Metadata, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Metadata: %w", err)
	}

	index++
	res.Timestamp, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Timestamp: %w", err)
	}

	index++
	res.Sequence, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Sequence: %w", err)
	}

	return nil
}

// itemToStats converts stack item into *Stats.
func itemToStats(item stackitem.Item, err error) (*Stats, error) {
	if err != nil {
		return nil, ParseError(err)
	}
	var res = new(Stats)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of Stats from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *Stats) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 4 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	res.Count, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Count: %w", err)
	}

	index++
	res.Sum, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Sum: %w", err)
	}

	index++
	res.Min, err = itemToOptionalInteger(arr[index])
	if err != nil {
		return fmt.Errorf("field Min: %w", err)
	}

	index++
	res.Max, err = itemToOptionalInteger(arr[index])
	if err != nil {
		return fmt.Errorf("field Max: %w", err)
	}

	return nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, err
	}
	return u, nil
}

func itemToOptionalInteger(item stackitem.Item) (*big.Int, error) {
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	return item.TryInteger()
}
