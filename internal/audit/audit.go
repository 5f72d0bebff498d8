// Package audit checks consistency of the ScoreVault contract storage.
//
// Collector accepts raw storage items of the contract (e.g. from state root
// based storage traversal) and Report recomputes statistics from the stored
// records, matching them against the stored aggregate, the score histogram
// and the credentials.
package audit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/attestd/scorevault-contract/rpc/scorevault"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Storage key prefixes of the ScoreVault contract.
const (
	prefixConfig     = 'f'
	prefixStats      = 's'
	prefixSequence   = 'q'
	prefixRecord     = 'r'
	prefixCredential = 'c'
	prefixAscending  = 'a'
	prefixDescending = 'd'

	histogramOffsetLen = 8
	credentialPartLen  = 32
)

// ErrInconsistent is returned by Collector.Report if the storage does not
// satisfy the contract invariants.
var ErrInconsistent = errors.New("inconsistent contract storage")

// Report describes audited contract storage.
type Report struct {
	// Nil if the contract is not initialized.
	Config *scorevault.Config

	Records     int
	Credentials int

	// Last issued record sequence number.
	Sequence int64

	// Statistics recomputed from the records.
	Stats scorevault.Stats
}

// Collector accumulates storage items of the ScoreVault contract. Zero value
// is ready to use.
type Collector struct {
	config      *scorevault.Config
	stored      *scorevault.Stats
	sequence    int64
	records     []scorevault.Record
	credentials map[util.Uint160]struct{}
	ascending   map[uint64]int64
	descending  map[uint64]int64
}

// Write decodes storage item of the contract. It returns an error if the item
// can not be decoded.
func (c *Collector) Write(key, value []byte) error {
	if len(key) == 0 {
		return errors.New("empty storage key")
	}

	switch key[0] {
	case prefixConfig:
		var cfg scorevault.Config

		err := decodeSerialized(value, &cfg)
		if err != nil {
			return fmt.Errorf("decode config: %w", err)
		}

		c.config = &cfg
	case prefixStats:
		var st scorevault.Stats

		err := decodeSerialized(value, &st)
		if err != nil {
			return fmt.Errorf("decode statistics: %w", err)
		}

		c.stored = &st
	case prefixSequence:
		c.sequence = bigint.FromBytes(value).Int64()
	case prefixRecord:
		owner, err := ownerFromKey(key)
		if err != nil {
			return err
		}

		var rec scorevault.Record

		err = decodeSerialized(value, &rec)
		if err != nil {
			return fmt.Errorf("decode record %x: %w", key[1:], err)
		}

		if !rec.Owner.Equals(owner) {
			return fmt.Errorf("record %x belongs to another owner %s", key[1:], rec.Owner.StringLE())
		}

		c.records = append(c.records, rec)
	case prefixCredential:
		owner, err := ownerFromKey(key)
		if err != nil {
			return err
		}

		err = checkCredential(value)
		if err != nil {
			return fmt.Errorf("decode credential %x: %w", key[1:], err)
		}

		if c.credentials == nil {
			c.credentials = make(map[util.Uint160]struct{})
		}

		c.credentials[owner] = struct{}{}
	case prefixAscending, prefixDescending:
		if len(key) != 1+histogramOffsetLen {
			return fmt.Errorf("invalid histogram key length %d", len(key))
		}

		n := bigint.FromBytes(value)
		if !n.IsInt64() || n.Sign() <= 0 {
			return fmt.Errorf("invalid histogram counter %s", n)
		}

		offset := binary.BigEndian.Uint64(key[1:])

		if key[0] == prefixAscending {
			c.ascending = setCounter(c.ascending, offset, n.Int64())
		} else {
			c.descending = setCounter(c.descending, offset, n.Int64())
		}
	default:
		return fmt.Errorf("unexpected storage key prefix %q", key[0])
	}

	return nil
}

// Report checks collected storage and returns its summary. All found
// violations are joined into an error matching ErrInconsistent.
func (c *Collector) Report() (Report, error) {
	rep := Report{
		Config:      c.config,
		Records:     len(c.records),
		Credentials: len(c.credentials),
		Sequence:    c.sequence,
		Stats:       recompute(c.records),
	}

	var errs []error

	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.config == nil {
		if len(c.records) > 0 || len(c.credentials) > 0 || c.stored != nil {
			fail("contract data exists without configuration")
		}

		return rep, inconsistency(errs)
	}

	stored := scorevault.Stats{Count: new(big.Int), Sum: new(big.Int)}
	if c.stored != nil {
		stored = *c.stored
	}

	if stored.Count.Cmp(rep.Stats.Count) != 0 {
		fail("stored count %s, records %s", stored.Count, rep.Stats.Count)
	}

	if stored.Sum.Cmp(rep.Stats.Sum) != 0 {
		fail("stored sum %s, recomputed %s", stored.Sum, rep.Stats.Sum)
	}

	if rep.Stats.Count.Sign() > 0 {
		if stored.Min == nil || stored.Min.Cmp(rep.Stats.Min) != 0 {
			fail("stored minimum %v, recomputed %s", stored.Min, rep.Stats.Min)
		}

		if stored.Max == nil || stored.Max.Cmp(rep.Stats.Max) != 0 {
			fail("stored maximum %v, recomputed %s", stored.Max, rep.Stats.Max)
		}
	}

	expAsc := make(map[uint64]int64)
	expDesc := make(map[uint64]int64)

	for i := range c.records {
		rec := c.records[i]

		if rec.Score.Cmp(c.config.MinScore) < 0 || rec.Score.Cmp(c.config.MaxScore) > 0 {
			fail("score %s of %s is out of bounds", rec.Score, rec.Owner.StringLE())
			continue
		}

		if rec.Sequence.Sign() <= 0 || rec.Sequence.Int64() > c.sequence {
			fail("sequence %s of %s is not issued yet", rec.Sequence, rec.Owner.StringLE())
		}

		if _, ok := c.credentials[rec.Owner]; !ok {
			fail("record of %s has no credential", rec.Owner.StringLE())
		}

		expAsc[new(big.Int).Sub(rec.Score, c.config.MinScore).Uint64()]++
		expDesc[new(big.Int).Sub(c.config.MaxScore, rec.Score).Uint64()]++
	}

	compareHistogram("ascending", expAsc, c.ascending, fail)
	compareHistogram("descending", expDesc, c.descending, fail)

	return rep, inconsistency(errs)
}

// CompareStats returns an error matching ErrInconsistent if actual statistics
// differ from the expected ones.
func CompareStats(expected, actual scorevault.Stats) error {
	var errs []error

	if !equalOptional(expected.Count, actual.Count) {
		errs = append(errs, fmt.Errorf("count %v, expected %v", actual.Count, expected.Count))
	}

	if !equalOptional(expected.Sum, actual.Sum) {
		errs = append(errs, fmt.Errorf("sum %v, expected %v", actual.Sum, expected.Sum))
	}

	if !equalOptional(expected.Min, actual.Min) {
		errs = append(errs, fmt.Errorf("minimum %v, expected %v", actual.Min, expected.Min))
	}

	if !equalOptional(expected.Max, actual.Max) {
		errs = append(errs, fmt.Errorf("maximum %v, expected %v", actual.Max, expected.Max))
	}

	return inconsistency(errs)
}

func equalOptional(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Cmp(b) == 0
}

func recompute(records []scorevault.Record) scorevault.Stats {
	st := scorevault.Stats{
		Count: big.NewInt(int64(len(records))),
		Sum:   new(big.Int),
	}

	for i := range records {
		score := records[i].Score

		st.Sum.Add(st.Sum, score)

		if st.Min == nil || score.Cmp(st.Min) < 0 {
			st.Min = score
		}

		if st.Max == nil || score.Cmp(st.Max) > 0 {
			st.Max = score
		}
	}

	return st
}

func compareHistogram(name string, expected, actual map[uint64]int64, fail func(string, ...any)) {
	for offset, n := range expected {
		if actual[offset] != n {
			fail("%s histogram counter of offset %d is %d, records %d", name, offset, actual[offset], n)
		}
	}

	for offset, n := range actual {
		if _, ok := expected[offset]; !ok {
			fail("%s histogram has dangling counter %d of offset %d", name, n, offset)
		}
	}
}

func inconsistency(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrInconsistent, errors.Join(errs...))
}

type stackItemDecoder interface {
	FromStackItem(stackitem.Item) error
}

func decodeSerialized(data []byte, v stackItemDecoder) error {
	item, err := stackitem.Deserialize(data)
	if err != nil {
		return err
	}

	return v.FromStackItem(item)
}

func ownerFromKey(key []byte) (util.Uint160, error) {
	owner, err := util.Uint160DecodeBytesBE(key[1:])
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid owner in key %x: %w", key, err)
	}

	return owner, nil
}

func checkCredential(value []byte) error {
	item, err := stackitem.Deserialize(value)
	if err != nil {
		return err
	}

	arr, ok := item.Value().([]stackitem.Item)
	if !ok || len(arr) != 2 {
		return errors.New("not a pair")
	}

	for i := range arr {
		b, err := arr[i].TryBytes()
		if err != nil {
			return err
		}

		if len(b) != credentialPartLen {
			return fmt.Errorf("invalid length %d of element #%d", len(b), i)
		}
	}

	return nil
}

func setCounter(m map[uint64]int64, offset uint64, n int64) map[uint64]int64 {
	if m == nil {
		m = make(map[uint64]int64)
	}

	m[offset] = n

	return m
}
