// Boundary text codec.
//
// The ledger transmits every human-readable field (names, skill labels,
// contact strings) as bytes: either a 0x-prefixed hex string or a JSON array
// of byte values, depending on the fullnode serializer. This file decodes
// both shapes into NFC-normalized UTF-8 and encodes outbound text as the byte
// array the entry functions expect. The rest of the codebase only ever sees
// decoded text.
package chain

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DecodeText converts a ledger-encoded text value into normalized UTF-8.
// Accepts a 0x-hex string, a plain string, or an array of byte values; any
// other shape decodes to the empty string.
func DecodeText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.HasPrefix(s, "0x") {
			if b, err := hex.DecodeString(s[2:]); err == nil {
				return normalize(string(b))
			}
			return ""
		}
		return normalize(s)
	}
	var bs []byte
	if err := json.Unmarshal(raw, &bs); err == nil {
		return normalize(string(bs))
	}
	return ""
}

// DecodeTextSlice decodes a ledger array of encoded text values, preserving
// order (skill insertion order is meaningful for default selection).
func DecodeTextSlice(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, DecodeText(it))
	}
	return out
}

// EncodeText converts text into the byte-value array shape the contract's
// entry functions take for vector<u8> arguments.
func EncodeText(s string) []int {
	b := []byte(norm.NFC.String(s))
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

// normalize NFC-normalizes decoded text so visually identical names compare
// equal regardless of the wallet that produced them.
func normalize(s string) string { return norm.NFC.String(s) }
