package generator

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/swiftlab/routing/refdata"
)

var (
	referenceTags     = []string{":20:", ":21:"}
	dateAmountTags    = []string{":32A:"}
	bankCodeTags      = []string{":52A:", ":57A:", ":58A:", ":53A:", ":54A:"}
	paymentDetailTags = []string{":70:"}
	senderTags        = []string{":50K:"}
	beneficiaryTags   = []string{":59:"}

	blockEndMarkers = []string{":", "{", "}"}

	amountRe     = regexp.MustCompile(`(\d+),(\d{2})`)
	longDigitsRe = regexp.MustCompile(`\d{5,}`)
	numberTplRe  = regexp.MustCompile(`\{number:(\d+):(\d+)\}`)
	stringTplRe  = regexp.MustCompile(`\{string:(\d+)\}`)
)

// Variator rewrites template fields line by line before generation, so
// that messages drawn from the same template still differ in their
// references, parties and amounts. Lookup values come from the
// reference data store.
type Variator struct {
	data refdata.Set
	rng  *rand.Rand
}

func NewVariator(data refdata.Set, rng *rand.Rand) (*Variator, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	return &Variator{data: data, rng: rng}, nil
}

func (v *Variator) pick(category string) string {
	values := v.data.Values(category)
	if len(values) == 0 {
		return ""
	}
	return values[v.rng.Intn(len(values))]
}

func (v *Variator) randomString(charset string, length int) string {
	return randomString(v.rng, charset, length)
}

// AddVariations rewrites one template. Each line is dispatched on its
// field tag; lines that match no tag pass through unchanged.
func (v *Variator) AddVariations(template string) string {
	lines := strings.Split(template, "\n")
	modified := make([]string, len(lines))
	copy(modified, lines)

	for j, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if tag, ok := matchTag(line, referenceTags); ok {
			modified[j] = v.varyReference(line, tag)
			continue
		}

		if _, ok := matchTag(line, dateAmountTags); ok {
			modified[j] = v.varyDateAmountCurrency(line)
			continue
		}

		if strings.Contains(line, "/") && containsDigit(line) {
			modified[j] = v.varyAccountNumbers(line)
			continue
		}

		if tag, ok := matchTag(line, bankCodeTags); ok {
			modified[j] = v.varyBankCode(line, tag)
			continue
		}

		if tag, ok := matchTag(line, paymentDetailTags); ok {
			cut := strings.Index(line, tag) + len(tag)
			modified[j] = line[:cut] + v.varyPaymentDetails(line[cut:])

			end := blockEnd(lines, j+1)
			for m := j + 1; m < end; m++ {
				modified[m] = v.varyPaymentDetails(lines[m])
			}
			continue
		}

		if tag, ok := matchTag(line, senderTags); ok {
			v.replaceBlock(modified, j, tag, v.newSenderBlock())
			continue
		}

		if tag, ok := matchTag(line, beneficiaryTags); ok {
			v.replaceBlock(modified, j, tag, v.newBeneficiaryBlock())
		}
	}

	// Half the time, extra instruction lines are appended after the
	// payment details block.
	for j := range modified {
		if _, ok := matchTag(modified[j], paymentDetailTags); !ok {
			continue
		}

		if v.rng.Float64() >= 0.5 {
			break
		}

		insert := blockEnd(modified, j+1)
		details := strings.Split(v.randomInstructions(), "\n")

		modified = append(modified[:insert], append(details, modified[insert:]...)...)
		break
	}

	return strings.Join(modified, "\n")
}

func matchTag(line string, tags []string) (string, bool) {
	for _, tag := range tags {
		if strings.Contains(line, tag) {
			return tag, true
		}
	}
	return "", false
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, digits)
}

// blockEnd scans forward from start to the first line that opens a new
// field or block.
func blockEnd(lines []string, start int) int {
	end := start
	for end < len(lines) {
		stop := false
		for _, marker := range blockEndMarkers {
			if strings.Contains(lines[end], marker) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
		end++
	}
	return end
}

func (v *Variator) replaceBlock(modified []string, start int, tag, block string) {
	modified[start] = tag
	for offset, line := range strings.Split(block, "\n") {
		idx := start + offset + 1
		if idx < len(modified) {
			modified[idx] = line
		}
	}
}

func (v *Variator) varyReference(line, tag string) string {
	parts := strings.SplitN(line, tag, 2)
	if len(parts) < 2 {
		return line
	}

	ref := strings.TrimSpace(parts[1])
	if ref == "" {
		return line
	}

	newRef := v.pick(refdata.ReferencePrefixes) +
		v.randomString(digits, 4+v.rng.Intn(5)) +
		v.randomString(upperLetters, 1+v.rng.Intn(3))

	return strings.Replace(line, ref, newRef, 1)
}

// varyDateAmountCurrency rewrites the ":32A:" value date, currency and
// amount. The date lands within the last two years.
func (v *Variator) varyDateAmountCurrency(line string) string {
	if len(line) > 11 {
		datePart := line[5:11]
		if isDigits(datePart) {
			daysBack := v.rng.Intn(731)
			newDate := time.Now().AddDate(0, 0, -daysBack).Format("060102")
			line = strings.Replace(line, datePart, newDate, 1)
		}
	}

	if len(line) > 14 {
		currPart := line[11:14]
		if isLetters(currPart) {
			line = strings.Replace(line, currPart, v.pick(refdata.Currencies), 1)
		}
	}

	if match := amountRe.FindString(line); match != "" {
		newAmount := strconv.Itoa(100+v.rng.Intn(999900)) + "," +
			v.randomString(digits, 2)
		line = strings.Replace(line, match, newAmount, 1)
	}

	return line
}

func (v *Variator) varyAccountNumbers(line string) string {
	parts := strings.Split(line, "/")
	for i := 1; i < len(parts); i++ {
		found := longDigitsRe.FindString(parts[i])
		if found == "" {
			continue
		}

		parts[i] = strings.Replace(parts[i], found, v.randomString(digits, len(found)), 1)
	}
	return strings.Join(parts, "/")
}

// varyBankCode builds a fresh BIC: 4-letter bank, 2-letter country,
// location, and half the time a 3-character branch.
func (v *Variator) varyBankCode(line, tag string) string {
	parts := strings.SplitN(line, tag, 2)
	if len(parts) < 2 {
		return line
	}

	code := strings.TrimSpace(parts[1])
	if code == "" {
		return line
	}

	bank := v.pick(refdata.BankPrefixes)
	if len(bank) > 4 {
		bank = bank[:4]
	}

	newCode := bank + v.pick(refdata.BankSuffixes) +
		v.randomString(upperLetters, 1) + v.randomString(digits, 1)

	if v.rng.Float64() < 0.5 {
		newCode += v.randomString(alphanumeric, 3)
	}

	return strings.Replace(line, code, newCode, 1)
}

func (v *Variator) varyPaymentDetails(line string) string {
	if len(line) <= 10 {
		return line
	}

	tpl := v.pick(refdata.PaymentDetailTemplates)
	if tpl == "" {
		return line
	}

	return v.processTemplate(tpl)
}

// processTemplate expands the {number:min:max} and {string:length}
// placeholders used by the detail and instruction mini-templates.
func (v *Variator) processTemplate(tpl string) string {
	result := numberTplRe.ReplaceAllStringFunc(tpl, func(m string) string {
		groups := numberTplRe.FindStringSubmatch(m)
		min, _ := strconv.Atoi(groups[1])
		max, _ := strconv.Atoi(groups[2])
		if max < min {
			return m
		}
		return strconv.Itoa(min + v.rng.Intn(max-min+1))
	})

	result = stringTplRe.ReplaceAllStringFunc(result, func(m string) string {
		groups := stringTplRe.FindStringSubmatch(m)
		length, _ := strconv.Atoi(groups[1])
		return v.randomString(alphanumeric, length)
	})

	return result
}

func (v *Variator) newSenderBlock() string {
	return v.newPartyBlock(0.7, 0.6)
}

func (v *Variator) newBeneficiaryBlock() string {
	return v.newPartyBlock(0.5, 0.7)
}

func (v *Variator) newPartyBlock(companyChance, cityChance float64) string {
	var name string
	if v.rng.Float64() < companyChance {
		name = v.pick(refdata.CompanyPrefixes) + " " +
			v.pick(refdata.CompanyMids) + " " +
			v.pick(refdata.CompanySuffixes)
	} else {
		name = v.pick(refdata.FirstNames) + " " + v.pick(refdata.LastNames)
	}

	address := strconv.Itoa(1+v.rng.Intn(999)) + " " +
		v.pick(refdata.StreetNames) + " " + v.pick(refdata.StreetTypes)

	if v.rng.Float64() < cityChance {
		address += "\n" + v.pick(refdata.Cities)
	}

	return name + "\n" + address
}

func (v *Variator) randomInstructions() string {
	tpl := v.pick(refdata.InstructionTemplates)
	return v.processTemplate(tpl)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return s != ""
}
