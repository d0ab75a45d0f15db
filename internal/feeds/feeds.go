// Package feeds maps FTSOv2 feed identifiers to asset symbols.
package feeds

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// UnknownSymbol is returned when a feed identifier is not in the table.
const UnknownSymbol = "???"

// IDLength is the byte width of an FTSOv2 feed identifier (category byte + name).
const IDLength = 21

// Entry binds a symbol pair such as "FLR/USD" to its feed identifier.
type Entry struct {
	Pair string
	ID   string
}

// Table is an ordered feed table. Lookups return the first match.
type Table []Entry

// DefaultTable returns the crypto feeds used by FlareBet markets.
func DefaultTable() Table {
	return Table{
		{Pair: "FLR/USD", ID: "0x01464c522f55534400000000000000000000000000"},
		{Pair: "XRP/USD", ID: "0x015852502f55534400000000000000000000000000"},
		{Pair: "BTC/USD", ID: "0x014254432f55534400000000000000000000000000"},
		{Pair: "ETH/USD", ID: "0x014554482f55534400000000000000000000000000"},
	}
}

// Resolve returns the base asset symbol for feedID, or UnknownSymbol.
func (t Table) Resolve(feedID string) string {
	for _, entry := range t {
		if strings.EqualFold(entry.ID, feedID) {
			return BaseSymbol(entry.Pair)
		}
	}
	return UnknownSymbol
}

// Symbols returns the base symbols in table order.
func (t Table) Symbols() []string {
	out := make([]string, 0, len(t))
	for _, entry := range t {
		out = append(out, BaseSymbol(entry.Pair))
	}
	return out
}

// IDs returns the feed identifiers as fixed-width byte arrays, in table order.
func (t Table) IDs() ([][IDLength]byte, error) {
	out := make([][IDLength]byte, 0, len(t))
	for _, entry := range t {
		id, err := Bytes21(entry.ID)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", entry.Pair, err)
		}
		out = append(out, id)
	}
	return out, nil
}

// Validate checks that every identifier is well formed and unique.
func (t Table) Validate() error {
	seen := make(map[string]string, len(t))
	for _, entry := range t {
		if _, err := Bytes21(entry.ID); err != nil {
			return fmt.Errorf("feed %s: %w", entry.Pair, err)
		}
		key := strings.ToLower(entry.ID)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("feed id %s mapped by both %s and %s", entry.ID, prev, entry.Pair)
		}
		seen[key] = entry.Pair
	}
	return nil
}

// BaseSymbol returns the part of a pair before the slash.
func BaseSymbol(pair string) string {
	base, _, _ := strings.Cut(pair, "/")
	return base
}

// Bytes21 decodes a hex feed identifier.
func Bytes21(id string) ([IDLength]byte, error) {
	var out [IDLength]byte
	data, err := hexutil.Decode(id)
	if err != nil {
		return out, fmt.Errorf("invalid feed id %q: %w", id, err)
	}
	if len(data) != IDLength {
		return out, fmt.Errorf("invalid feed id length %d: %s", len(data), id)
	}
	copy(out[:], data)
	return out, nil
}

// HexID encodes a fixed-width identifier as lowercase 0x-prefixed hex.
func HexID(id [IDLength]byte) string {
	return hexutil.Encode(id[:])
}
