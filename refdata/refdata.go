// Package refdata holds the lookup tables the template variator draws
// from: currencies, BIC fragments, person and company names, street
// and city names, and the payment detail / instruction mini-templates.
package refdata

import (
	"errors"
	"fmt"
)

const (
	Currencies             = "currencies"
	BankPrefixes           = "bank_prefixes"
	BankSuffixes           = "bank_suffixes"
	PaymentTypes           = "payment_types"
	ReferencePrefixes      = "reference_prefixes"
	FirstNames             = "first_names"
	LastNames              = "last_names"
	StreetNames            = "street_names"
	StreetTypes            = "street_types"
	Cities                 = "cities"
	CompanyPrefixes        = "company_prefixes"
	CompanyMids            = "company_mids"
	CompanySuffixes        = "company_suffixes"
	AccountNumbers         = "account_numbers"
	AmountValues           = "amount_values"
	PaymentDetailTemplates = "payment_detail_templates"
	InstructionTemplates   = "instruction_templates"
)

// EssentialCategories must be present before the variator can run.
var EssentialCategories = []string{
	Currencies, BankPrefixes, BankSuffixes, FirstNames, LastNames,
	CompanyPrefixes, CompanyMids, CompanySuffixes, StreetNames,
	StreetTypes, Cities, ReferencePrefixes,
}

var ErrNoData = errors.New("no reference data loaded")

// Set maps a category to its values.
type Set map[string][]string

func (s Set) Values(category string) []string {
	return s[category]
}

// Validate checks that every essential category has at least one value.
func (s Set) Validate() error {
	if len(s) == 0 {
		return ErrNoData
	}

	var missing []string
	for _, category := range EssentialCategories {
		if len(s[category]) == 0 {
			missing = append(missing, category)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing essential reference data: %v", missing)
	}

	return nil
}

type Repository interface {
	// Command

	Add(category, value string) error
	Delete(category, value string) error
	ReplaceAll(s Set) error

	// Query

	List(category string) ([]string, error)
	All() (Set, error)
}
