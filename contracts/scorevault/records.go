package scorevault

import (
	"github.com/attestd/scorevault-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const recordKeyPrefix = 'r'

func recordKey(owner interop.Hash160) []byte {
	return append([]byte{recordKeyPrefix}, owner...)
}

func loadRecord(ctx storage.Context, owner interop.Hash160) (Record, bool) {
	data := common.GetSerialized(ctx, recordKey(owner))
	if data == nil {
		return Record{}, false
	}

	return data.(Record), true
}

func putRecord(ctx storage.Context, rec Record) {
	common.SetSerialized(ctx, recordKey(rec.Owner), rec)
}

func deleteRecord(ctx storage.Context, owner interop.Hash160) {
	storage.Delete(ctx, recordKey(owner))
}
