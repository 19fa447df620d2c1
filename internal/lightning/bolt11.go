package lightning

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Tagged field type for the payee node id ('n' in the bech32 charset).
const payeeFieldType = 19

// payeeFromInvoice extracts the payee node pubkey from a bolt11 invoice.
// Only the optional 'n' tagged field is read; invoices that rely on
// signature recovery for the payee yield ok=false.
func payeeFromInvoice(invoice string) (string, bool) {
	hrp, data, err := bech32.DecodeNoLimit(strings.ToLower(strings.TrimSpace(invoice)))
	if err != nil || !strings.HasPrefix(hrp, "ln") {
		return "", false
	}

	// Layout: 7 groups of timestamp, tagged fields, 104 groups of signature.
	if len(data) < 7+104 {
		return "", false
	}
	fields := data[7 : len(data)-104]

	for len(fields) >= 3 {
		fieldType := fields[0]
		length := int(fields[1])*32 + int(fields[2])
		fields = fields[3:]
		if len(fields) < length {
			return "", false
		}
		if fieldType == payeeFieldType && length == 53 {
			pubkey, err := bech32.ConvertBits(fields[:length], 5, 8, false)
			if err != nil || len(pubkey) != 33 {
				return "", false
			}
			return hex.EncodeToString(pubkey), true
		}
		fields = fields[length:]
	}
	return "", false
}
