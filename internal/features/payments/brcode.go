// brcode.go builds the PIX "copia e cola" payload
// (EMV merchant-presented QR code with the BR Code PIX template).

package payments

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EMV field ids used by the PIX template.
const (
	emvPayloadFormat   = "00"
	emvMerchantAccount = "26"
	emvCategoryCode    = "52"
	emvCurrency        = "53"
	emvAmount          = "54"
	emvCountry         = "58"
	emvMerchantName    = "59"
	emvMerchantCity    = "60"
	emvAdditionalData  = "62"
	emvCRC             = "63"

	pixGUI        = "br.gov.bcb.pix"
	currencyBRL   = "986"
	maxNameLen    = 25
	maxCityLen    = 15
	maxTxIDLen    = 25
	crcFieldTotal = 8 // "6304" + 4 hex digits
)

var errBadCRC = errors.New("brcode crc mismatch")

// BRCode is the data encoded into a charge payload.
type BRCode struct {
	Key          string
	MerchantName string
	MerchantCity string
	TxID         string
	Amount       decimal.Decimal
}

// Encode renders the payload including its CRC16 trailer.
func (b BRCode) Encode() string {
	var sb strings.Builder
	sb.WriteString(tlv(emvPayloadFormat, "01"))
	sb.WriteString(tlv(emvMerchantAccount, tlv("00", pixGUI)+tlv("01", b.Key)))
	sb.WriteString(tlv(emvCategoryCode, "0000"))
	sb.WriteString(tlv(emvCurrency, currencyBRL))
	if b.Amount.IsPositive() {
		sb.WriteString(tlv(emvAmount, b.Amount.StringFixed(2)))
	}
	sb.WriteString(tlv(emvCountry, "BR"))
	sb.WriteString(tlv(emvMerchantName, clip(asciiUpper(b.MerchantName), maxNameLen)))
	sb.WriteString(tlv(emvMerchantCity, clip(asciiUpper(b.MerchantCity), maxCityLen)))
	sb.WriteString(tlv(emvAdditionalData, tlv("05", sanitizeTxID(b.TxID))))
	sb.WriteString(emvCRC + "04")

	payload := sb.String()
	return payload + fmt.Sprintf("%04X", crc16CCITT([]byte(payload)))
}

// VerifyBRCode checks the CRC trailer of a payload.
func VerifyBRCode(payload string) error {
	if len(payload) < crcFieldTotal || payload[len(payload)-crcFieldTotal:len(payload)-4] != emvCRC+"04" {
		return errBadCRC
	}
	body := payload[:len(payload)-4]
	if fmt.Sprintf("%04X", crc16CCITT([]byte(body))) != payload[len(payload)-4:] {
		return errBadCRC
	}
	return nil
}

func tlv(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// crc16CCITT is CRC-16/CCITT-FALSE: poly 0x1021, init 0xFFFF, no reflection.
func crc16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// sanitizeTxID keeps letters and digits; "***" means no txid.
func sanitizeTxID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "***"
	}
	return clip(sb.String(), maxTxIDLen)
}

var accentFold = strings.NewReplacer(
	"Á", "A", "À", "A", "Â", "A", "Ã", "A", "É", "E", "Ê", "E",
	"Í", "I", "Ó", "O", "Ô", "O", "Õ", "O", "Ú", "U", "Ç", "C",
)

func asciiUpper(s string) string {
	s = accentFold.Replace(strings.ToUpper(s))
	var sb strings.Builder
	for _, r := range s {
		if r < 0x80 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
