package sim

// #region imports
import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/market"
)

// #endregion

// #region hashes

// ContentHash covers the canonical serialization of the aggregate metrics
// only. Two runs with identical aggregate output share a content hash even
// if produced by different model versions.
func ContentHash(aggregate market.Metrics) string {
	sum := sha256.Sum256(aggregate.Canonical())
	return hex.EncodeToString(sum[:])
}

// CompositeHash covers content hash, sorted model versions, run seed and
// the logical run timestamp. This is the replay comparison key: any model
// version drift changes it even when outputs happen to agree.
func CompositeHash(contentHash string, versions []string, seed uint64, timestamp int64) string {
	sorted := make([]string, len(versions))
	copy(sorted, versions)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(contentHash))
	for _, v := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(v))
	}
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], seed)
	binary.BigEndian.PutUint64(buf[8:], uint64(timestamp))
	h.Write(buf[:])
	return hex.EncodeToString(h.Sum(nil))
}

// #endregion
