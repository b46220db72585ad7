package server

import (
	"time"

	"github.com/parcelgrid/rateshop/pkg/carrier"
)

// Request/response DTOs. The domain model carries no serialization tags;
// the wire shape of the public API is owned here.

type quoteRequest struct {
	Origin        addressDTO   `json:"origin"`
	Destination   addressDTO   `json:"destination"`
	Packages      []packageDTO `json:"packages"`
	ServiceLevel  string       `json:"serviceLevel,omitempty"`
	Carriers      []string     `json:"carriers,omitempty"`
	AccountNumber string       `json:"accountNumber,omitempty"`
}

type addressDTO struct {
	Name        string `json:"name,omitempty"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2,omitempty"`
	Line3       string `json:"line3,omitempty"`
	City        string `json:"city"`
	StateCode   string `json:"stateCode,omitempty"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
	Residential bool   `json:"residential,omitempty"`
}

type packageDTO struct {
	Length        float64   `json:"length"`
	Width         float64   `json:"width"`
	Height        float64   `json:"height"`
	DimensionUnit string    `json:"dimensionUnit"`
	Weight        float64   `json:"weight"`
	WeightUnit    string    `json:"weightUnit"`
	PackagingType string    `json:"packagingType,omitempty"`
	DeclaredValue *moneyDTO `json:"declaredValue,omitempty"`
}

type moneyDTO struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type quoteResponseDTO struct {
	Quotes        []quoteDTO `json:"quotes"`
	Carriers      []string   `json:"carriers"`
	RequestedAt   time.Time  `json:"requestedAt"`
	PartialErrors []errorDTO `json:"partialErrors,omitempty"`
}

type quoteDTO struct {
	Carrier            string         `json:"carrier"`
	ServiceCode        string         `json:"serviceCode"`
	ServiceName        string         `json:"serviceName"`
	ServiceLevel       string         `json:"serviceLevel,omitempty"`
	TotalCharges       moneyDTO       `json:"totalCharges"`
	BaseCharges        moneyDTO       `json:"baseCharges"`
	Surcharges         []surchargeDTO `json:"surcharges,omitempty"`
	TransitDays        int            `json:"transitDays,omitempty"`
	EstimatedDelivery  string         `json:"estimatedDelivery,omitempty"`
	GuaranteedDelivery bool           `json:"guaranteedDelivery"`
	BillingWeight      *weightDTO     `json:"billingWeight,omitempty"`
}

type surchargeDTO struct {
	Code        string   `json:"code"`
	Description string   `json:"description,omitempty"`
	Amount      moneyDTO `json:"amount"`
}

type weightDTO struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type errorResponse struct {
	Error errorDTO `json:"error"`
}

type errorDTO struct {
	Kind            string `json:"kind,omitempty"`
	Carrier         string `json:"carrier,omitempty"`
	Message         string `json:"message"`
	HTTPStatus      int    `json:"httpStatus,omitempty"`
	UpstreamCode    string `json:"upstreamCode,omitempty"`
	UpstreamMessage string `json:"upstreamMessage,omitempty"`
	Retryable       bool   `json:"retryable"`
}

func (r *quoteRequest) toModel() *carrier.RateRequest {
	packages := make([]carrier.Package, len(r.Packages))
	for i, p := range r.Packages {
		pkg := carrier.Package{
			Length:        p.Length,
			Width:         p.Width,
			Height:        p.Height,
			DimensionUnit: carrier.DimensionUnit(p.DimensionUnit),
			Weight:        p.Weight,
			WeightUnit:    carrier.WeightUnit(p.WeightUnit),
			PackagingType: carrier.PackagingType(p.PackagingType),
		}
		if p.DeclaredValue != nil {
			pkg.DeclaredValue = &carrier.Money{
				Amount:   p.DeclaredValue.Amount,
				Currency: p.DeclaredValue.Currency,
			}
		}
		packages[i] = pkg
	}

	return &carrier.RateRequest{
		Origin:        r.Origin.toModel(),
		Destination:   r.Destination.toModel(),
		Packages:      packages,
		ServiceLevel:  carrier.ServiceLevel(r.ServiceLevel),
		Carriers:      r.Carriers,
		AccountNumber: r.AccountNumber,
	}
}

func (a addressDTO) toModel() carrier.Address {
	return carrier.Address{
		Name:        a.Name,
		Line1:       a.Line1,
		Line2:       a.Line2,
		Line3:       a.Line3,
		City:        a.City,
		StateCode:   a.StateCode,
		PostalCode:  a.PostalCode,
		CountryCode: a.CountryCode,
		Residential: a.Residential,
	}
}

func toQuoteResponseDTO(resp *carrier.RateResponse) quoteResponseDTO {
	quotes := make([]quoteDTO, len(resp.Quotes))
	for i, q := range resp.Quotes {
		quotes[i] = toQuoteDTO(q)
	}

	dto := quoteResponseDTO{
		Quotes:      quotes,
		Carriers:    resp.Carriers,
		RequestedAt: resp.RequestedAt,
	}
	for _, pe := range resp.PartialErrors {
		dto.PartialErrors = append(dto.PartialErrors, toErrorDTO(pe))
	}
	return dto
}

func toQuoteDTO(q carrier.RateQuote) quoteDTO {
	dto := quoteDTO{
		Carrier:            q.Carrier,
		ServiceCode:        q.ServiceCode,
		ServiceName:        q.ServiceName,
		ServiceLevel:       string(q.ServiceLevel),
		TotalCharges:       moneyDTO{Amount: q.TotalCharges.Amount, Currency: q.TotalCharges.Currency},
		BaseCharges:        moneyDTO{Amount: q.BaseCharges.Amount, Currency: q.BaseCharges.Currency},
		TransitDays:        q.TransitDays,
		EstimatedDelivery:  q.EstimatedDelivery,
		GuaranteedDelivery: q.GuaranteedDelivery,
	}
	for _, sc := range q.Surcharges {
		dto.Surcharges = append(dto.Surcharges, surchargeDTO{
			Code:        sc.Code,
			Description: sc.Description,
			Amount:      moneyDTO{Amount: sc.Amount.Amount, Currency: sc.Amount.Currency},
		})
	}
	if q.BillingWeight != nil {
		dto.BillingWeight = &weightDTO{
			Value: q.BillingWeight.Value,
			Unit:  string(q.BillingWeight.Unit),
		}
	}
	return dto
}

func toErrorDTO(e *carrier.Error) errorDTO {
	return errorDTO{
		Kind:            string(e.Kind),
		Carrier:         e.Carrier,
		Message:         e.Message,
		HTTPStatus:      e.HTTPStatus,
		UpstreamCode:    e.UpstreamCode,
		UpstreamMessage: e.UpstreamMessage,
		Retryable:       e.Retryable,
	}
}
