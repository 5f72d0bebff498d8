package scorevault

import (
	"github.com/attestd/scorevault-contract/common"
	cst "github.com/attestd/scorevault-contract/contracts/scorevault/scorevaultconst"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// aggregate is the stored form of Stats. Min and Max are meaningful only
// when Count is positive.
type aggregate struct {
	Count int
	Sum   int
	Min   int
	Max   int
}

const (
	ascendingKeyPrefix  = 'a'
	descendingKeyPrefix = 'd'

	// offsetLen is the length of the big-endian score offset in histogram keys.
	offsetLen = 8
)

func loadAggregate(ctx storage.Context) aggregate {
	data := common.GetSerialized(ctx, statsKey)
	if data == nil {
		return aggregate{}
	}

	return data.(aggregate)
}

func saveAggregate(ctx storage.Context, agg aggregate) {
	common.SetSerialized(ctx, statsKey, agg)
}

func snapshot(agg aggregate) Stats {
	var st Stats

	st.Count = agg.Count
	st.Sum = agg.Sum

	if agg.Count > 0 {
		st.Min = agg.Min
		st.Max = agg.Max
	}

	return st
}

func applyInsert(ctx storage.Context, cfg Config, agg aggregate, score int) aggregate {
	histogramAdd(ctx, cfg, score)

	if agg.Count == 0 {
		agg.Min = score
		agg.Max = score
	} else {
		if score < agg.Min {
			agg.Min = score
		}
		if score > agg.Max {
			agg.Max = score
		}
	}

	agg.Count += 1
	agg.Sum += score

	return agg
}

func applyReplace(ctx storage.Context, cfg Config, agg aggregate, oldScore, newScore int) aggregate {
	agg = applyRemove(ctx, cfg, agg, oldScore)
	return applyInsert(ctx, cfg, agg, newScore)
}

// applyRemove subtracts score from the aggregate. If score was the last
// occurrence of the current minimum (maximum), the new one is taken from the
// first key of the ascending (descending) histogram.
func applyRemove(ctx storage.Context, cfg Config, agg aggregate, score int) aggregate {
	if agg.Count <= 0 {
		panic(cst.ErrInvariantViolation + ": removing score from empty statistics")
	}

	vanished := histogramRemove(ctx, cfg, score)

	agg.Count -= 1
	agg.Sum -= score

	if agg.Count == 0 {
		agg.Min = 0
		agg.Max = 0
		return agg
	}

	if vanished {
		if score == agg.Min {
			agg.Min = cfg.MinScore + firstOffset(ctx, ascendingKeyPrefix)
		}
		if score == agg.Max {
			agg.Max = cfg.MaxScore - firstOffset(ctx, descendingKeyPrefix)
		}
	}

	return agg
}

// histogramKeys returns keys of the score in ascending and descending
// histograms. Offsets are encoded in big-endian, so the lexicographic order of
// keys is the numeric order of offsets.
func histogramKeys(cfg Config, score int) ([]byte, []byte) {
	asc := append([]byte{ascendingKeyPrefix}, encodeOffset(score-cfg.MinScore)...)
	desc := append([]byte{descendingKeyPrefix}, encodeOffset(cfg.MaxScore-score)...)

	return asc, desc
}

func histogramAdd(ctx storage.Context, cfg Config, score int) {
	asc, desc := histogramKeys(cfg, score)

	n := common.GetCounter(ctx, asc) + 1
	storage.Put(ctx, asc, n)
	storage.Put(ctx, desc, n)
}

// histogramRemove decrements the number of records with the score and returns
// true if there are no such records left.
func histogramRemove(ctx storage.Context, cfg Config, score int) bool {
	asc, desc := histogramKeys(cfg, score)

	n := common.GetCounter(ctx, asc)
	if n <= 0 {
		panic(cst.ErrInvariantViolation + ": score is missing in histogram")
	}

	n--
	if n == 0 {
		storage.Delete(ctx, asc)
		storage.Delete(ctx, desc)
		return true
	}

	storage.Put(ctx, asc, n)
	storage.Put(ctx, desc, n)

	return false
}

func firstOffset(ctx storage.Context, prefix byte) int {
	it := storage.Find(ctx, []byte{prefix}, storage.KeysOnly|storage.RemovePrefix)
	if !iterator.Next(it) {
		panic(cst.ErrInvariantViolation + ": histogram is empty")
	}

	return decodeOffset(iterator.Value(it).([]byte))
}

func encodeOffset(v int) []byte {
	buf := make([]byte, offsetLen)
	for i := offsetLen - 1; i >= 0; i-- {
		buf[i] = byte(v % 256)
		v = v / 256
	}

	return buf
}

func decodeOffset(b []byte) int {
	v := 0
	for i := 0; i < len(b); i++ {
		v = v*256 + int(b[i])
	}

	return v
}
