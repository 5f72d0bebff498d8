package scorevault

import (
	"github.com/attestd/scorevault-contract/common"
	cst "github.com/attestd/scorevault-contract/contracts/scorevault/scorevaultconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

type (
	// Config is the contract configuration fixed at setup.
	Config struct {
		Admin           interop.Hash160
		MinScore        int
		MaxScore        int
		MaxMetadataSize int
	}

	// Record is a score submitted by its owner.
	Record struct {
		Owner     interop.Hash160
		Score     int
		Metadata  []byte
		Timestamp int
		Sequence  int
	}

	// Stats contains aggregate values over all current records. Min and Max
	// are null while there are no records.
	Stats struct {
		Count int
		Sum   int
		Min   any
		Max   any
	}
)

const (
	configKey   = "f"
	statsKey    = "s"
	sequenceKey = "q"
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	if data == nil {
		runtime.Log("scorevault contract deployed, waiting for setup")
		return
	}

	args := data.([]any)
	if len(args) != 4 {
		panic(cst.ErrInvalidInput + ": setup expects admin, score bounds and metadata size")
	}

	ctx := storage.GetContext()
	setup(ctx, args[0].(interop.Hash160), args[1].(int), args[2].(int), args[3].(int))

	runtime.Log("scorevault contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the contract admin or by committee.
func Update(script []byte, manifest []byte, data any) {
	ctx := storage.GetReadOnlyContext()

	var admin []byte
	cfg, ok := loadConfig(ctx)
	if ok {
		admin = cfg.Admin
	}

	if !common.HasUpdateAccess(admin) {
		panic(cst.ErrUnauthorized + ": only admin or committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("scorevault contract updated")
}

// Setup initializes contract deployed without configuration. It can be
// invoked only by committee and only once.
//
// Admin is an account allowed to update the contract. Scores outside of
// [minScore, maxScore] are rejected, metadata longer than maxMetadataSize
// bytes is rejected.
func Setup(admin interop.Hash160, minScore, maxScore, maxMetadataSize int) {
	common.CheckCommitteeWitness(cst.ErrUnauthorized + ": committee witness check failed")

	ctx := storage.GetContext()
	setup(ctx, admin, minScore, maxScore, maxMetadataSize)

	runtime.Log("scorevault contract initialized")
}

func setup(ctx storage.Context, admin interop.Hash160, minScore, maxScore, maxMetadataSize int) {
	if storage.Get(ctx, configKey) != nil {
		panic(cst.ErrAlreadyInitialized)
	}

	if len(admin) != interop.Hash160Len {
		panic(cst.ErrInvalidInput + ": incorrect admin")
	}

	if minScore > maxScore {
		panic(cst.ErrInvalidInput + ": minimum score exceeds maximum score")
	}

	if maxScore-minScore > cst.MaxScoreSpan {
		panic(cst.ErrInvalidInput + ": score range is too wide")
	}

	if maxMetadataSize < 0 || maxMetadataSize > cst.MaxMetadataLimit {
		panic(cst.ErrInvalidInput + ": incorrect metadata size limit")
	}

	common.SetSerialized(ctx, configKey, Config{
		Admin:           admin,
		MinScore:        minScore,
		MaxScore:        maxScore,
		MaxMetadataSize: maxMetadataSize,
	})
}

// Submit creates or replaces the score record of the owner. The transaction
// must be signed by the owner.
//
// KeyCommitment is a SHA-256 hash of the owner's viewing key. It is required
// on the first submission of the owner and registers the viewing key; later
// submissions ignore it (see RotateCredential).
func Submit(owner interop.Hash160, score int, metadata []byte, keyCommitment []byte) {
	ctx := storage.GetContext()
	cfg := mustLoadConfig(ctx)

	checkOwner(owner)

	if score < cfg.MinScore || score > cfg.MaxScore {
		panic(cst.ErrInvalidInput + ": score is out of bounds")
	}

	if metadata == nil {
		metadata = []byte{}
	}

	if len(metadata) > cfg.MaxMetadataSize {
		panic(cst.ErrInvalidInput + ": metadata is too big")
	}

	if !hasCredential(ctx, owner) {
		if keyCommitment == nil || len(keyCommitment) == 0 {
			panic(cst.ErrMissingCredential)
		}

		putCredential(ctx, owner, keyCommitment)
	}

	agg := loadAggregate(ctx)

	prev, ok := loadRecord(ctx, owner)
	if ok {
		agg = applyReplace(ctx, cfg, agg, prev.Score, score)
	} else {
		agg = applyInsert(ctx, cfg, agg, score)
	}

	saveAggregate(ctx, agg)
	putRecord(ctx, Record{
		Owner:     owner,
		Score:     score,
		Metadata:  metadata,
		Timestamp: runtime.GetTime(),
		Sequence:  nextSequence(ctx),
	})
}

// RegisterCredential registers the viewing key commitment of the owner
// without submitting a record. It panics with AlreadyRegistered if the owner
// already has a viewing key.
func RegisterCredential(owner interop.Hash160, keyCommitment []byte) {
	ctx := storage.GetContext()
	mustLoadConfig(ctx)

	checkOwner(owner)

	if hasCredential(ctx, owner) {
		panic(cst.ErrAlreadyRegistered)
	}

	putCredential(ctx, owner, keyCommitment)
}

// RotateCredential replaces the viewing key of the owner. OldKey must be the
// current viewing key, newKeyCommitment is a SHA-256 hash of the new one.
func RotateCredential(owner interop.Hash160, oldKey []byte, newKeyCommitment []byte) {
	ctx := storage.GetContext()
	mustLoadConfig(ctx)

	checkOwner(owner)

	if !verifyCredential(ctx, owner, oldKey) {
		panic(cst.ErrUnauthorized)
	}

	putCredential(ctx, owner, newKeyCommitment)
}

// Revoke removes the record and the viewing key of the owner. Statistics
// stop accounting the removed score.
func Revoke(owner interop.Hash160, key []byte) {
	ctx := storage.GetContext()
	cfg := mustLoadConfig(ctx)

	checkOwner(owner)

	if !verifyCredential(ctx, owner, key) {
		panic(cst.ErrUnauthorized)
	}

	rec, ok := loadRecord(ctx, owner)
	if ok {
		saveAggregate(ctx, applyRemove(ctx, cfg, loadAggregate(ctx), rec.Score))
		deleteRecord(ctx, owner)
	}

	deleteCredential(ctx, owner)
}

// GetRecord returns the record of the owner if key is the owner's viewing key.
//
// Wrong keys and unknown owners both lead to Unauthorized. NotFound is
// possible only for a correct key registered without a submission.
func GetRecord(owner interop.Hash160, key []byte) Record {
	ctx := storage.GetReadOnlyContext()

	if len(owner) != interop.Hash160Len {
		panic(cst.ErrInvalidInput + ": incorrect owner")
	}

	if !verifyCredential(ctx, owner, key) {
		panic(cst.ErrUnauthorized)
	}

	rec, ok := loadRecord(ctx, owner)
	if !ok {
		panic(cst.ErrNotFound)
	}

	return rec
}

// GetOwnRecord returns the record of the owner to the owner itself. The
// invocation must be signed by the owner, no viewing key is passed.
func GetOwnRecord(owner interop.Hash160) Record {
	ctx := storage.GetReadOnlyContext()

	checkOwner(owner)

	rec, ok := loadRecord(ctx, owner)
	if !ok {
		panic(cst.ErrNotFound)
	}

	return rec
}

// GetStats returns aggregate statistics over all current records.
func GetStats() Stats {
	ctx := storage.GetReadOnlyContext()
	return snapshot(loadAggregate(ctx))
}

// GetConfig returns the contract configuration.
func GetConfig() Config {
	ctx := storage.GetReadOnlyContext()
	return mustLoadConfig(ctx)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func checkOwner(owner interop.Hash160) {
	if len(owner) != interop.Hash160Len {
		panic(cst.ErrInvalidInput + ": incorrect owner")
	}

	common.CheckOwnerWitness(owner, cst.ErrUnauthorized+": owner witness check failed")
}

func loadConfig(ctx storage.Context) (Config, bool) {
	data := common.GetSerialized(ctx, configKey)
	if data == nil {
		return Config{}, false
	}

	return data.(Config), true
}

func mustLoadConfig(ctx storage.Context) Config {
	cfg, ok := loadConfig(ctx)
	if !ok {
		panic(cst.ErrNotInitialized)
	}

	return cfg
}

func nextSequence(ctx storage.Context) int {
	n := common.GetCounter(ctx, sequenceKey) + 1
	storage.Put(ctx, sequenceKey, n)

	return n
}
