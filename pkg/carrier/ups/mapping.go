package ups

import (
	"fmt"
	"strconv"

	"github.com/parcelgrid/rateshop/pkg/carrier"
)

// ============================================================================
// Code tables. serviceLevelToCode and codeToServiceLevel must stay
// mutually consistent: every canonical code round-trips. Alias codes
// (e.g. "59", "14") map inbound only; the canonical code wins outbound.
// ============================================================================

var serviceLevelToCode = map[carrier.ServiceLevel]string{
	carrier.ServiceGround:        "03",
	carrier.ServiceThreeDay:      "12",
	carrier.ServiceTwoDay:        "02",
	carrier.ServiceNextDay:       "01",
	carrier.ServiceNextDaySaver:  "13",
	carrier.ServiceIntlStandard:  "11",
	carrier.ServiceIntlExpedited: "08",
	carrier.ServiceIntlExpress:   "07",
	carrier.ServiceIntlSaver:     "65",
}

var codeToServiceLevel = map[string]carrier.ServiceLevel{
	"03": carrier.ServiceGround,
	"12": carrier.ServiceThreeDay,
	"02": carrier.ServiceTwoDay,
	"59": carrier.ServiceTwoDay, // 2nd Day Air A.M., inbound alias
	"01": carrier.ServiceNextDay,
	"14": carrier.ServiceNextDay, // Next Day Air Early, inbound alias
	"13": carrier.ServiceNextDaySaver,
	"11": carrier.ServiceIntlStandard,
	"08": carrier.ServiceIntlExpedited,
	"07": carrier.ServiceIntlExpress,
	"65": carrier.ServiceIntlSaver,
}

var serviceNames = map[string]string{
	"01": "UPS Next Day Air",
	"02": "UPS 2nd Day Air",
	"03": "UPS Ground",
	"07": "UPS Worldwide Express",
	"08": "UPS Worldwide Expedited",
	"11": "UPS Standard",
	"12": "UPS 3 Day Select",
	"13": "UPS Next Day Air Saver",
	"14": "UPS Next Day Air Early",
	"59": "UPS 2nd Day Air A.M.",
	"65": "UPS Worldwide Saver",
}

// customerSuppliedPackage is the packaging code used when none is given.
const customerSuppliedPackage = "02"

var packagingCodes = map[carrier.PackagingType]string{
	carrier.PackagingCustom:    "02",
	carrier.PackagingLetter:    "01",
	carrier.PackagingTube:      "03",
	carrier.PackagingPak:       "04",
	carrier.PackagingSmallBox:  "2a",
	carrier.PackagingMediumBox: "2b",
	carrier.PackagingLargeBox:  "2c",
}

var dimensionUnitCodes = map[carrier.DimensionUnit]string{
	carrier.DimensionInch:       "IN",
	carrier.DimensionCentimeter: "CM",
}

var weightUnitCodes = map[carrier.WeightUnit]string{
	carrier.WeightPound:    "LBS",
	carrier.WeightKilogram: "KGS",
}

var weightUnitsFromCode = map[string]carrier.WeightUnit{
	"LBS": carrier.WeightPound,
	"KGS": carrier.WeightKilogram,
}

// ============================================================================
// Domain -> wire
// ============================================================================

// toWireRequest translates a domain rate request into the UPS payload.
// A requested service level with no UPS code is a validation error
// rather than a silent fallback to shop mode.
func toWireRequest(req *carrier.RateRequest, accountNumber string) (*rateRequestWrapper, error) {
	option := "Shop"
	var service *codeDescription
	if req.ServiceLevel != "" {
		code, ok := serviceLevelToCode[req.ServiceLevel]
		if !ok {
			return nil, carrier.NewError(carrier.KindValidation, carrierName,
				fmt.Sprintf("service level %q has no UPS service code", req.ServiceLevel))
		}
		option = "Rate"
		service = &codeDescription{Code: code, Description: serviceNames[code]}
	}

	if req.AccountNumber != "" {
		accountNumber = req.AccountNumber
	}

	packages := make([]wirePackage, len(req.Packages))
	for i, pkg := range req.Packages {
		packages[i] = toWirePackage(pkg)
	}

	return &rateRequestWrapper{
		RateRequest: wireRateRequest{
			Request: requestSection{RequestOption: option},
			Shipment: wireShipment{
				Shipper: wireParty{
					Name:          req.Origin.Name,
					ShipperNumber: accountNumber,
					Address:       toWireAddress(req.Origin),
				},
				ShipFrom: wireParty{
					Name:    req.Origin.Name,
					Address: toWireAddress(req.Origin),
				},
				ShipTo: wireParty{
					Name:    req.Destination.Name,
					Address: toWireAddress(req.Destination),
				},
				Service: service,
				Package: packages,
			},
		},
	}, nil
}

func toWireAddress(addr carrier.Address) wireAddress {
	lines := make([]string, 0, 3)
	for _, line := range []string{addr.Line1, addr.Line2, addr.Line3} {
		if line != "" {
			lines = append(lines, line)
		}
	}

	wa := wireAddress{
		AddressLine:       lines,
		City:              addr.City,
		StateProvinceCode: addr.StateCode,
		PostalCode:        addr.PostalCode,
		CountryCode:       addr.CountryCode,
	}
	if addr.Residential {
		wa.ResidentialAddressIndicator = "Y"
	}
	return wa
}

func toWirePackage(pkg carrier.Package) wirePackage {
	packagingCode, ok := packagingCodes[pkg.PackagingType]
	if !ok {
		packagingCode = customerSuppliedPackage
	}

	wp := wirePackage{
		PackagingType: codeDescription{Code: packagingCode},
		Dimensions: wireDimensions{
			UnitOfMeasurement: codeDescription{Code: dimensionUnitCodes[pkg.DimensionUnit]},
			Length:            formatNumber(pkg.Length),
			Width:             formatNumber(pkg.Width),
			Height:            formatNumber(pkg.Height),
		},
		PackageWeight: wireWeight{
			UnitOfMeasurement: codeDescription{Code: weightUnitCodes[pkg.WeightUnit]},
			Weight:            formatNumber(pkg.Weight),
		},
	}
	if dv := pkg.DeclaredValue; dv != nil {
		wp.PackageServiceOptions = &packageServiceOptions{
			DeclaredValue: &wireMonetary{
				CurrencyCode:  dv.Currency,
				MonetaryValue: fmt.Sprintf("%.2f", dv.Amount),
			},
		}
	}
	return wp
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ============================================================================
// Wire -> domain
// ============================================================================

// fromRatedShipment translates one rated shipment into a domain quote.
func fromRatedShipment(rs ratedShipment) (carrier.RateQuote, error) {
	total, err := parseMonetary(rs.TotalCharges)
	if err != nil {
		return carrier.RateQuote{}, fmt.Errorf("parsing total charges: %w", err)
	}
	base, err := parseMonetary(rs.TransportationCharges)
	if err != nil {
		return carrier.RateQuote{}, fmt.Errorf("parsing transportation charges: %w", err)
	}

	code := rs.Service.Code
	quote := carrier.RateQuote{
		Carrier:            carrierName,
		ServiceCode:        code,
		ServiceName:        resolveServiceName(code, rs.Service.Description),
		ServiceLevel:       codeToServiceLevel[code],
		TotalCharges:       total,
		BaseCharges:        base,
		Surcharges:         mapSurcharges(rs.ItemizedCharges),
		TransitDays:        resolveTransitDays(rs),
		GuaranteedDelivery: rs.GuaranteedDelivery != nil,
	}

	if tit := rs.TimeInTransit; tit != nil {
		quote.EstimatedDelivery = tit.ServiceSummary.EstimatedArrival.Arrival.Date
	}
	if bw := rs.BillingWeight; bw != nil {
		if v, err := strconv.ParseFloat(bw.Weight, 64); err == nil {
			quote.BillingWeight = &carrier.Weight{
				Value: v,
				Unit:  weightUnitsFromCode[bw.UnitOfMeasurement.Code],
			}
		}
	}
	return quote, nil
}

// resolveServiceName prefers the display-name table, then whatever name
// the carrier echoed, then a synthesized fallback.
func resolveServiceName(code, echoed string) string {
	if name, ok := serviceNames[code]; ok {
		return name
	}
	if echoed != "" {
		return echoed
	}
	return fmt.Sprintf("Service %s", code)
}

// mapSurcharges keeps only positive-amount itemized charges.
func mapSurcharges(charges itemizedCharges) []carrier.Surcharge {
	var result []carrier.Surcharge
	for _, c := range charges {
		amount, err := strconv.ParseFloat(c.MonetaryValue, 64)
		if err != nil || amount <= 0 {
			continue
		}
		result = append(result, carrier.Surcharge{
			Code:        c.Code,
			Description: c.Description,
			Amount:      carrier.Money{Amount: amount, Currency: c.CurrencyCode},
		})
	}
	return result
}

// resolveTransitDays reads transit days from the guaranteed-delivery
// block first, then the time-in-transit summary; first one present wins.
func resolveTransitDays(rs ratedShipment) int {
	if gd := rs.GuaranteedDelivery; gd != nil && gd.BusinessDaysInTransit != "" {
		if days, err := strconv.Atoi(gd.BusinessDaysInTransit); err == nil {
			return days
		}
	}
	if tit := rs.TimeInTransit; tit != nil {
		if days, err := strconv.Atoi(tit.ServiceSummary.EstimatedArrival.BusinessDaysInTransit); err == nil {
			return days
		}
	}
	return 0
}

func parseMonetary(m wireMonetary) (carrier.Money, error) {
	amount, err := strconv.ParseFloat(m.MonetaryValue, 64)
	if err != nil {
		return carrier.Money{}, fmt.Errorf("invalid monetary value %q: %w", m.MonetaryValue, err)
	}
	return carrier.Money{Amount: amount, Currency: m.CurrencyCode}, nil
}
