package carrier

import (
	"time"
)

// ServiceLevel is the normalized, carrier-agnostic delivery service category.
type ServiceLevel string

const (
	ServiceGround        ServiceLevel = "ground"
	ServiceThreeDay      ServiceLevel = "three_day"
	ServiceTwoDay        ServiceLevel = "two_day"
	ServiceNextDay       ServiceLevel = "next_day"
	ServiceNextDaySaver  ServiceLevel = "next_day_saver"
	ServiceIntlStandard  ServiceLevel = "intl_standard"
	ServiceIntlExpedited ServiceLevel = "intl_expedited"
	ServiceIntlExpress   ServiceLevel = "intl_express"
	ServiceIntlSaver     ServiceLevel = "intl_saver"
)

// PackagingType represents the type of packaging used for a parcel.
type PackagingType string

const (
	PackagingCustom    PackagingType = "custom"
	PackagingLetter    PackagingType = "letter"
	PackagingTube      PackagingType = "tube"
	PackagingPak       PackagingType = "pak"
	PackagingSmallBox  PackagingType = "small_box"
	PackagingMediumBox PackagingType = "medium_box"
	PackagingLargeBox  PackagingType = "large_box"
)

// WeightUnit represents weight measurement unit.
type WeightUnit string

const (
	WeightPound    WeightUnit = "lb"
	WeightKilogram WeightUnit = "kg"
)

// DimensionUnit represents dimension measurement unit.
type DimensionUnit string

const (
	DimensionInch       DimensionUnit = "in"
	DimensionCentimeter DimensionUnit = "cm"
)

// Operation identifies a carrier capability.
type Operation string

const (
	OperationRate Operation = "rate"

	// Named for extensibility; no provider implements them yet.
	OperationLabel Operation = "label"
	OperationTrack Operation = "track"
)

// Address represents a shipping address. Constructed once per request,
// never mutated.
type Address struct {
	Name        string
	Line1       string
	Line2       string
	Line3       string
	City        string
	StateCode   string // e.g., "NY", "ON"
	PostalCode  string
	CountryCode string // ISO 3166-1 alpha-2, e.g., "US", "CA"
	Residential bool
}

// Money represents a monetary amount.
type Money struct {
	Amount   float64
	Currency string // 3-letter code, e.g., "USD"
}

// Package represents a single parcel to be rated.
type Package struct {
	Length        float64
	Width         float64
	Height        float64
	DimensionUnit DimensionUnit
	Weight        float64
	WeightUnit    WeightUnit
	PackagingType PackagingType // optional; carriers default to customer-supplied
	DeclaredValue *Money        // optional insured value
}

// Weight is a weight with its unit, used for carrier-reported billing weight.
type Weight struct {
	Value float64
	Unit  WeightUnit
}

// Surcharge is one itemized charge on a rate quote.
type Surcharge struct {
	Code        string
	Description string
	Amount      Money
}

// RateRequest describes a shipment to be priced. Consumed read-only.
type RateRequest struct {
	Origin      Address
	Destination Address
	Packages    []Package

	// ServiceLevel restricts the quote to a single service. Empty means
	// shop all services the carrier offers.
	ServiceLevel ServiceLevel

	// Carriers restricts the fan-out to specific carrier ids. Empty means
	// all registered carriers that support rating.
	Carriers []string

	// AccountNumber overrides the configured shipper account.
	AccountNumber string
}

// RateQuote is one priced service offer from a carrier.
type RateQuote struct {
	Carrier            string
	ServiceCode        string // carrier-specific
	ServiceName        string
	ServiceLevel       ServiceLevel // empty when the carrier code has no normalized mapping
	TotalCharges       Money
	BaseCharges        Money
	Surcharges         []Surcharge
	TransitDays        int    // 0 = not reported
	EstimatedDelivery  string // carrier-reported date string, if any
	GuaranteedDelivery bool
	BillingWeight      *Weight
}

// RateResponse is the aggregated result of one rate-shopping call.
type RateResponse struct {
	Quotes      []RateQuote
	Carriers    []string // resolved carrier ids, in resolution order
	RequestedAt time.Time

	// PartialErrors holds per-carrier failures that were tolerated because
	// at least one carrier produced quotes.
	PartialErrors []*Error
}
