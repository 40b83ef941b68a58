package generator

import (
	"math/rand"
	"strconv"
)

const (
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
	alphanumeric = upperLetters + digits
)

// Handler produces a replacement for a matched field. groups holds the
// full match at index 0 followed by the capture groups. A handler that
// receives fewer groups than its field type captures keeps the
// original text.
type Handler interface {
	Substitute(groups []string) string
}

func randomString(rng *rand.Rand, charset string, length int) string {
	out := make([]byte, length)
	for i := range out {
		out[i] = charset[rng.Intn(len(charset))]
	}
	return string(out)
}

func pick(rng *rand.Rand, values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	return values[rng.Intn(len(values))], true
}

// NewHandler returns the handler registered for the field type, or the
// default handler when the type is unknown.
func NewHandler(fieldType string, substitutions map[string][]string, rng *rand.Rand) Handler {
	switch fieldType {
	case "reference":
		return &referenceHandler{substitutions, rng}
	case "date_amount_currency":
		return &dateAmountCurrencyHandler{substitutions, rng}
	case "account_number":
		return &accountNumberHandler{substitutions, rng}
	case "bank_code":
		return &bankCodeHandler{substitutions, rng}
	case "sender_block":
		return &senderBlockHandler{substitutions, rng}
	case "beneficiary_block":
		return &beneficiaryBlockHandler{substitutions, rng}
	default:
		return &defaultHandler{rng}
	}
}

// referenceHandler rewrites reference fields such as ":20:REFERENCE".
// Group 1 is the field tag.
type referenceHandler struct {
	substitutions map[string][]string
	rng           *rand.Rand
}

func (h *referenceHandler) Substitute(groups []string) string {
	if len(groups) < 2 {
		return groups[0]
	}
	tag := groups[1]

	value, ok := pick(h.rng, h.substitutions["reference"])
	if !ok {
		value = randomString(h.rng, alphanumeric, 8)
	}

	return tag + value
}

// dateAmountCurrencyHandler rewrites fields such as
// ":32A:230115USD1000,00". Group 1 is the field tag; the date,
// currency and amount groups are regenerated wholesale.
type dateAmountCurrencyHandler struct {
	substitutions map[string][]string
	rng           *rand.Rand
}

func (h *dateAmountCurrencyHandler) Substitute(groups []string) string {
	if len(groups) < 2 {
		return groups[0]
	}
	tag := groups[1]

	date, ok := pick(h.rng, h.substitutions["dates"])
	if !ok {
		date = randomString(h.rng, digits, 6)
	}

	currency, ok := pick(h.rng, h.substitutions["currencies"])
	if !ok {
		currency = randomString(h.rng, upperLetters, 3)
	}

	amount, ok := pick(h.rng, h.substitutions["amounts"])
	if !ok {
		amount = strconv.Itoa(1000+h.rng.Intn(9999001)) + ",00"
	}

	return tag + date + currency + amount
}

// accountNumberHandler rewrites account fields such as "/12345678".
// Group 1 is the prefix up to the digits.
type accountNumberHandler struct {
	substitutions map[string][]string
	rng           *rand.Rand
}

func (h *accountNumberHandler) Substitute(groups []string) string {
	if len(groups) < 2 {
		return groups[0]
	}
	prefix := groups[1]

	account, ok := pick(h.rng, h.substitutions["account_numbers"])
	if !ok {
		account = randomString(h.rng, digits, 8+h.rng.Intn(5))
	}

	return prefix + account
}

// bankCodeHandler rewrites BIC fields such as ":52A:BANKUS33".
// Group 1 is the prefix up to the code.
type bankCodeHandler struct {
	substitutions map[string][]string
	rng           *rand.Rand
}

func (h *bankCodeHandler) Substitute(groups []string) string {
	if len(groups) < 2 {
		return groups[0]
	}
	prefix := groups[1]

	code, ok := pick(h.rng, h.substitutions["bank_codes"])
	if !ok {
		code = randomString(h.rng, alphanumeric, 8+h.rng.Intn(4))
	}

	return prefix + code
}

// senderBlockHandler rewrites multi-line sender blocks. Group 1 is the
// tag line, groups 2 and 3 the name and address lines, group 4 any
// trailing newline.
type senderBlockHandler struct {
	substitutions map[string][]string
	rng           *rand.Rand
}

func (h *senderBlockHandler) Substitute(groups []string) string {
	if len(groups) < 5 {
		return groups[0]
	}
	prefix := groups[1]
	trailing := groups[4]

	name, ok := pick(h.rng, h.substitutions["sender_names"])
	if !ok {
		name = "DEFAULT SENDER"
	}

	address, ok := pick(h.rng, h.substitutions["sender_addresses"])
	if !ok {
		address = "DEFAULT SENDER ADDRESS"
	}

	return prefix + name + "\n" + address + trailing
}

// beneficiaryBlockHandler mirrors senderBlockHandler for ":59:" blocks.
type beneficiaryBlockHandler struct {
	substitutions map[string][]string
	rng           *rand.Rand
}

func (h *beneficiaryBlockHandler) Substitute(groups []string) string {
	if len(groups) < 5 {
		return groups[0]
	}
	prefix := groups[1]
	trailing := groups[4]

	name, ok := pick(h.rng, h.substitutions["beneficiary_names"])
	if !ok {
		name = "DEFAULT BENEFICIARY"
	}

	address, ok := pick(h.rng, h.substitutions["beneficiary_addresses"])
	if !ok {
		address = "DEFAULT BENEFICIARY ADDRESS"
	}

	return prefix + name + "\n" + address + trailing
}

// defaultHandler keeps the first character and randomizes the rest.
type defaultHandler struct {
	rng *rand.Rand
}

func (h *defaultHandler) Substitute(groups []string) string {
	original := groups[0]
	if len(original) <= 1 {
		return original
	}

	return original[:1] + randomString(h.rng, alphanumeric, len(original)-1)
}
