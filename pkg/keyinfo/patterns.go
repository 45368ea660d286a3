package keyinfo

import (
	"regexp"
	"strings"
)

// Field names. They double as JSON keys of models.KeyInformation.
const (
	FieldResortName     = "resort_name"
	FieldValidityPeriod = "validity_period"
	FieldCurrency       = "currency"
	FieldSpecialOffers  = "special_offers"
)

// valueGroup is the named capture holding a field value. Patterns without it
// use the whole match.
const valueGroup = "value"

// sp is horizontal whitespace. Name and offer values never span a line,
// so a value cannot run from one text block into the next.
const sp = `[ \t]`

const (
	month     = `\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\b\.?`
	dayMonth  = `\d{1,2}(?:st|nd|rd|th)?[\s\-/]+` + month + `(?:[\s\-/,]+\d{4}|[\s\-/]+\d{2}\b)?`
	monthDay  = month + `\s+\d{1,2}(?:st|nd|rd|th)?\b(?:,?\s+\d{4})?`
	numeric   = `\d{1,2}[./-]\d{1,2}[./-]\d{2,4}`
	date      = `(?:` + dayMonth + `|` + monthDay + `|` + numeric + `)`
	rangeSep  = `\s*(?:-|–|—|to|until|till|through|thru)\s*`
	dateRange = date + rangeSep + date
)

// FieldSpec declares how one field is found. Patterns are tried in order;
// Cumulative fields collect every distinct match instead of the first.
type FieldSpec struct {
	Name       string
	Patterns   []*regexp.Regexp
	Window     int      // runes of each source to scan, 0 = all
	Reject     []string // matches containing any of these are skipped
	Cumulative bool
	Normalize  func(string) string
}

// DefaultFields returns the built-in field specs in extraction order.
func DefaultFields() []FieldSpec {
	return []FieldSpec{
		{
			Name: FieldResortName,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b(?P<value>[A-Z][A-Z ]{2,}(?:RESORT|HOTEL|ISLAND|VILLAS?))`),
				regexp.MustCompile(`\b(?P<value>[A-Z][a-z]+(?:` + sp + `+[A-Z][a-z]+)*` + sp + `+(?:Resort|Hotel|Island|Lodge)(?:` + sp + `*(?:&|and)` + sp + `*Spa)?)`),
				regexp.MustCompile(`\b(?P<value>(?:Resort|Hotel|Island)` + sp + `+[A-Z][A-Za-z0-9'&-]*(?:` + sp + `+[A-Z][A-Za-z0-9'&-]*)*)`),
			},
			Window: 500,
			Reject: []string{"Pool Villa", "Beach Villa", "Water Villa", "Room Category", "RATES PERIOD"},
		},
		{
			Name: FieldValidityPeriod,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bvalid(?:ity)?(?:\s+period)?\s*(?:from|:)?\s*(?P<value>` + dateRange + `)`),
				regexp.MustCompile(`(?i)\bperiod[:\s]+[^\n]*?` + dayMonth),
				regexp.MustCompile(`(?i)(?P<value>` + dateRange + `)`),
				regexp.MustCompile(`(?i)\b(?:valid|applicable)\s+(?:from|until|till|through)\s+(?P<value>` + date + `)`),
			},
			Window: 1000,
		},
		{
			Name: FieldCurrency,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?P<value>USD|EUR|GBP|AED|MVR|INR|JPY|CHF|AUD|SGD|THB|LKR|CNY)\b`),
				regexp.MustCompile(`(?P<value>US\$|€|£|¥|\$)`),
			},
			Normalize: normalizeCurrency,
		},
		{
			Name: FieldSpecialOffers,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b(?P<value>(?:[Ff]ree|FREE)` + sp + `+[A-Z][A-Za-z-]*(?:` + sp + `+(?:of` + sp + `+|&` + sp + `+)?[A-Z][A-Za-z-]*){0,3})`),
				regexp.MustCompile(`(?i)\b(?P<value>complimentary(?:` + sp + `+[a-z&'-]+){1,4})`),
				regexp.MustCompile(`(?i)\b(?P<value>\d{1,2}` + sp + `?%` + sp + `*(?:off|discount)(?:` + sp + `+(?:on|for)` + sp + `+[a-z]+(?:` + sp + `+[a-z]+)?)?)`),
				regexp.MustCompile(`(?i)\b(?P<value>early` + sp + `+bird(?:` + sp + `+(?:offer|discount|booking|bonus))?)`),
				regexp.MustCompile(`(?i)\b(?P<value>stay` + sp + `+\d+` + sp + `*(?:nights?` + sp + `*)?[,/&]?` + sp + `*pay` + sp + `+\d+(?:` + sp + `*nights?)?)`),
				regexp.MustCompile(`(?i)\b(?P<value>honeymoon` + sp + `+(?:offer|package|benefits?|special))`),
				regexp.MustCompile(`(?i)\bspecial\s+offers?\s*[:\-–]\s*(?P<value>[^.\n]{3,80})`),
			},
			Cumulative: true,
		},
	}
}

var currencySymbols = map[string]string{
	"US$": "USD",
	"$":   "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
}

func normalizeCurrency(v string) string {
	if code, ok := currencySymbols[v]; ok {
		return code
	}
	return strings.ToUpper(v)
}

// mealPlans are reported in this order when mentioned anywhere in the document.
var mealPlans = []string{"Half Board", "Full Board", "All Inclusive", "Bed & Breakfast", "Room Only"}
