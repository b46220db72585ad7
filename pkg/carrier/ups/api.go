package ups

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ============================================================================
// Wire types for the UPS OAuth and Rating APIs. These never cross the
// package boundary; domain types carry no UPS vocabulary.
// ============================================================================

// tokenResponse is the OAuth client-credentials exchange result.
// POST /security/v1/oauth/token
type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   flexSeconds `json:"expires_in"`
}

// flexSeconds accepts expires_in as either a JSON number or a quoted
// numeric string, which UPS has been known to send.
type flexSeconds int64

func (s *flexSeconds) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*s = flexSeconds(n)
	return nil
}

// errorBody is the conventional UPS error envelope:
// {"response":{"errors":[{"code","message"}]}}. The first entry is
// authoritative.
type errorBody struct {
	Response struct {
		Errors []upstreamError `json:"errors"`
	} `json:"response"`
}

type upstreamError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ============================================================================
// Rating request
// POST /api/rating/{version}/{Rate|Shop}
// ============================================================================

type rateRequestWrapper struct {
	RateRequest wireRateRequest `json:"RateRequest"`
}

type wireRateRequest struct {
	Request  requestSection `json:"Request"`
	Shipment wireShipment   `json:"Shipment"`
}

type requestSection struct {
	// RequestOption is "Rate" for a single service or "Shop" for all.
	RequestOption        string                `json:"RequestOption"`
	TransactionReference *transactionReference `json:"TransactionReference,omitempty"`
}

type transactionReference struct {
	CustomerContext string `json:"CustomerContext,omitempty"`
}

type wireShipment struct {
	Shipper  wireParty        `json:"Shipper"`
	ShipTo   wireParty        `json:"ShipTo"`
	ShipFrom wireParty        `json:"ShipFrom"`
	Service  *codeDescription `json:"Service,omitempty"`
	Package  []wirePackage    `json:"Package"`
}

type wireParty struct {
	Name          string      `json:"Name,omitempty"`
	ShipperNumber string      `json:"ShipperNumber,omitempty"`
	Address       wireAddress `json:"Address"`
}

type wireAddress struct {
	AddressLine       []string `json:"AddressLine"`
	City              string   `json:"City"`
	StateProvinceCode string   `json:"StateProvinceCode,omitempty"`
	PostalCode        string   `json:"PostalCode"`
	CountryCode       string   `json:"CountryCode"`

	// Residential is signaled by the indicator's presence, not its value.
	ResidentialAddressIndicator string `json:"ResidentialAddressIndicator,omitempty"`
}

type codeDescription struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

type wirePackage struct {
	PackagingType         codeDescription        `json:"PackagingType"`
	Dimensions            wireDimensions         `json:"Dimensions"`
	PackageWeight         wireWeight             `json:"PackageWeight"`
	PackageServiceOptions *packageServiceOptions `json:"PackageServiceOptions,omitempty"`
}

type wireDimensions struct {
	UnitOfMeasurement codeDescription `json:"UnitOfMeasurement"`
	Length            string          `json:"Length"`
	Width             string          `json:"Width"`
	Height            string          `json:"Height"`
}

type wireWeight struct {
	UnitOfMeasurement codeDescription `json:"UnitOfMeasurement"`
	Weight            string          `json:"Weight"`
}

type packageServiceOptions struct {
	DeclaredValue *wireMonetary `json:"DeclaredValue,omitempty"`
}

type wireMonetary struct {
	CurrencyCode  string `json:"CurrencyCode"`
	MonetaryValue string `json:"MonetaryValue"`
}

// ============================================================================
// Rating response
// ============================================================================

type rateResponseWrapper struct {
	RateResponse *wireRateResponse `json:"RateResponse"`
}

type wireRateResponse struct {
	RatedShipment ratedShipments `json:"RatedShipment"`
}

// ratedShipments normalizes the RatedShipment field, which UPS returns as
// a single object for Rate and an array for Shop, into a slice.
type ratedShipments []ratedShipment

func (r *ratedShipments) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, (*[]ratedShipment)(r))
	}
	var single ratedShipment
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*r = ratedShipments{single}
	return nil
}

type ratedShipment struct {
	Service               codeDescription         `json:"Service"`
	TotalCharges          wireMonetary            `json:"TotalCharges"`
	TransportationCharges wireMonetary            `json:"TransportationCharges"`
	ItemizedCharges       itemizedCharges         `json:"ItemizedCharges,omitempty"`
	GuaranteedDelivery    *wireGuaranteedDelivery `json:"GuaranteedDelivery,omitempty"`
	TimeInTransit         *wireTimeInTransit      `json:"TimeInTransit,omitempty"`
	BillingWeight         *wireWeight             `json:"BillingWeight,omitempty"`
}

type wireCharge struct {
	Code          string `json:"Code"`
	Description   string `json:"Description,omitempty"`
	CurrencyCode  string `json:"CurrencyCode"`
	MonetaryValue string `json:"MonetaryValue"`
}

// itemizedCharges gets the same single-or-array treatment as
// RatedShipment.
type itemizedCharges []wireCharge

func (c *itemizedCharges) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, (*[]wireCharge)(c))
	}
	var single wireCharge
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*c = itemizedCharges{single}
	return nil
}

type wireGuaranteedDelivery struct {
	BusinessDaysInTransit string `json:"BusinessDaysInTransit,omitempty"`
	DeliveryByTime        string `json:"DeliveryByTime,omitempty"`
}

type wireTimeInTransit struct {
	ServiceSummary struct {
		EstimatedArrival struct {
			BusinessDaysInTransit string `json:"BusinessDaysInTransit,omitempty"`
			Arrival               struct {
				Date string `json:"Date,omitempty"`
				Time string `json:"Time,omitempty"`
			} `json:"Arrival"`
		} `json:"EstimatedArrival"`
	} `json:"ServiceSummary"`
}
