// pixkey.go validates and normalizes PIX keys.

package payments

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"roleta.com.br/server/internal/common"
)

// PixKeyType is one of the key kinds the PIX directory accepts.
type PixKeyType string

const (
	PixKeyCPF    PixKeyType = "cpf"
	PixKeyCNPJ   PixKeyType = "cnpj"
	PixKeyEmail  PixKeyType = "email"
	PixKeyPhone  PixKeyType = "phone"
	PixKeyRandom PixKeyType = "random"
)

// ParsePixKeyType maps a request string onto a PixKeyType.
func ParsePixKeyType(s string) (PixKeyType, bool) {
	switch t := PixKeyType(strings.ToLower(strings.TrimSpace(s))); t {
	case PixKeyCPF, PixKeyCNPJ, PixKeyEmail, PixKeyPhone, PixKeyRandom:
		return t, true
	}
	return "", false
}

// NormalizePixKey validates raw as a key of type t and returns its canonical
// form: digits only for cpf/cnpj, +55DDDNUMBER for phones, lower case for
// email and random keys.
func NormalizePixKey(t PixKeyType, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty key", common.ErrInvalidPixKey)
	}

	switch t {
	case PixKeyCPF:
		d := digitsOnly(raw)
		if !validCPF(d) {
			return "", fmt.Errorf("%w: bad cpf", common.ErrInvalidPixKey)
		}
		return d, nil

	case PixKeyCNPJ:
		d := digitsOnly(raw)
		if !validCNPJ(d) {
			return "", fmt.Errorf("%w: bad cnpj", common.ErrInvalidPixKey)
		}
		return d, nil

	case PixKeyEmail:
		addr, err := mail.ParseAddress(raw)
		if err != nil || addr.Address != raw || len(raw) > 77 || !strings.Contains(raw[strings.LastIndexByte(raw, '@'):], ".") {
			return "", fmt.Errorf("%w: bad email", common.ErrInvalidPixKey)
		}
		return strings.ToLower(raw), nil

	case PixKeyPhone:
		d := digitsOnly(raw)
		if strings.HasPrefix(raw, "+") || len(d) > 11 {
			if !strings.HasPrefix(d, "55") {
				return "", fmt.Errorf("%w: only brazilian phones", common.ErrInvalidPixKey)
			}
			d = d[2:]
		}
		if len(d) != 10 && len(d) != 11 {
			return "", fmt.Errorf("%w: phone needs area code and 8 or 9 digits", common.ErrInvalidPixKey)
		}
		if d[0] == '0' {
			return "", fmt.Errorf("%w: bad area code", common.ErrInvalidPixKey)
		}
		return "+55" + d, nil

	case PixKeyRandom:
		id, err := uuid.Parse(raw)
		if err != nil || len(raw) != 36 {
			return "", fmt.Errorf("%w: random key must be a uuid", common.ErrInvalidPixKey)
		}
		return id.String(), nil
	}

	return "", fmt.Errorf("%w: unknown key type %q", common.ErrInvalidPixKey, t)
}

// MaskPixKey hides the middle of a normalized key for logs and notifications.
func MaskPixKey(key string) string {
	r := []rune(key)
	if len(r) <= 6 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:3]) + strings.Repeat("*", len(r)-6) + string(r[len(r)-3:])
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSame(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}

// validCPF checks length and both mod-11 check digits.
func validCPF(d string) bool {
	if len(d) != 11 || allSame(d) {
		return false
	}
	for _, n := range []int{9, 10} {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(d[i]-'0') * (n + 1 - i)
		}
		check := sum * 10 % 11
		if check == 10 {
			check = 0
		}
		if int(d[n]-'0') != check {
			return false
		}
	}
	return true
}

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// validCNPJ checks length and both mod-11 check digits.
func validCNPJ(d string) bool {
	if len(d) != 14 || allSame(d) {
		return false
	}
	for _, weights := range [][]int{cnpjWeights1, cnpjWeights2} {
		n := len(weights)
		sum := 0
		for i, w := range weights {
			sum += int(d[i]-'0') * w
		}
		check := 11 - sum%11
		if check >= 10 {
			check = 0
		}
		if int(d[n]-'0') != check {
			return false
		}
	}
	return true
}
