package ups

import (
	"encoding/json"
	"testing"

	"github.com/parcelgrid/rateshop/pkg/carrier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func domainRequest() *carrier.RateRequest {
	return &carrier.RateRequest{
		Origin: carrier.Address{
			Name:        "Acme Warehouse",
			Line1:       "100 Industrial Way",
			City:        "Timonium",
			StateCode:   "MD",
			PostalCode:  "21093",
			CountryCode: "US",
		},
		Destination: carrier.Address{
			Name:        "Jane Receiver",
			Line1:       "42 Elm St",
			Line2:       "Apt 7",
			City:        "Alpharetta",
			StateCode:   "GA",
			PostalCode:  "30005",
			CountryCode: "US",
		},
		Packages: []carrier.Package{{
			Length:        12,
			Width:         8,
			Height:        6.5,
			DimensionUnit: carrier.DimensionInch,
			Weight:        4.25,
			WeightUnit:    carrier.WeightPound,
		}},
	}
}

func TestToWireRequest_ShopByDefault(t *testing.T) {
	wire, err := toWireRequest(domainRequest(), "A1B2C3")
	require.NoError(t, err)

	assert.Equal(t, "Shop", wire.RateRequest.Request.RequestOption)
	assert.Nil(t, wire.RateRequest.Shipment.Service)
	assert.Equal(t, "A1B2C3", wire.RateRequest.Shipment.Shipper.ShipperNumber)
}

func TestToWireRequest_RateForKnownServiceLevel(t *testing.T) {
	req := domainRequest()
	req.ServiceLevel = carrier.ServiceTwoDay

	wire, err := toWireRequest(req, "A1B2C3")
	require.NoError(t, err)

	assert.Equal(t, "Rate", wire.RateRequest.Request.RequestOption)
	require.NotNil(t, wire.RateRequest.Shipment.Service)
	assert.Equal(t, "02", wire.RateRequest.Shipment.Service.Code)
	assert.Equal(t, "UPS 2nd Day Air", wire.RateRequest.Shipment.Service.Description)
}

func TestToWireRequest_UnknownServiceLevelFails(t *testing.T) {
	req := domainRequest()
	req.ServiceLevel = carrier.ServiceLevel("teleport")

	_, err := toWireRequest(req, "A1B2C3")
	require.Error(t, err)

	cerr, ok := carrier.AsError(err)
	require.True(t, ok)
	assert.Equal(t, carrier.KindValidation, cerr.Kind)
	assert.Contains(t, cerr.Message, "teleport")
}

func TestToWireRequest_RequestAccountNumberOverrides(t *testing.T) {
	req := domainRequest()
	req.AccountNumber = "OVERRIDE9"

	wire, err := toWireRequest(req, "DEFAULT1")
	require.NoError(t, err)
	assert.Equal(t, "OVERRIDE9", wire.RateRequest.Shipment.Shipper.ShipperNumber)
}

func TestToWireRequest_PartyLayout(t *testing.T) {
	wire, err := toWireRequest(domainRequest(), "A1B2C3")
	require.NoError(t, err)

	shipment := wire.RateRequest.Shipment
	assert.Equal(t, "Acme Warehouse", shipment.Shipper.Name)
	assert.Equal(t, shipment.Shipper.Address, shipment.ShipFrom.Address,
		"shipper and ship-from carry the origin address")
	assert.Equal(t, "Jane Receiver", shipment.ShipTo.Name)
	assert.Equal(t, []string{"42 Elm St", "Apt 7"}, shipment.ShipTo.Address.AddressLine,
		"empty address lines are dropped")
}

func TestToWireAddress_ResidentialIndicator(t *testing.T) {
	addr := domainRequest().Destination

	assert.Empty(t, toWireAddress(addr).ResidentialAddressIndicator)

	addr.Residential = true
	assert.Equal(t, "Y", toWireAddress(addr).ResidentialAddressIndicator)
}

func TestToWirePackage_Defaults(t *testing.T) {
	pkg := domainRequest().Packages[0]

	wp := toWirePackage(pkg)
	assert.Equal(t, customerSuppliedPackage, wp.PackagingType.Code,
		"missing packaging type falls back to customer-supplied")
	assert.Equal(t, "IN", wp.Dimensions.UnitOfMeasurement.Code)
	assert.Equal(t, "LBS", wp.PackageWeight.UnitOfMeasurement.Code)
	assert.Equal(t, "12", wp.Dimensions.Length)
	assert.Equal(t, "6.5", wp.Dimensions.Height)
	assert.Equal(t, "4.25", wp.PackageWeight.Weight)
	assert.Nil(t, wp.PackageServiceOptions)
}

func TestToWirePackage_PackagingCodes(t *testing.T) {
	cases := map[carrier.PackagingType]string{
		carrier.PackagingCustom:    "02",
		carrier.PackagingLetter:    "01",
		carrier.PackagingTube:      "03",
		carrier.PackagingPak:       "04",
		carrier.PackagingSmallBox:  "2a",
		carrier.PackagingMediumBox: "2b",
		carrier.PackagingLargeBox:  "2c",
	}
	for packaging, want := range cases {
		pkg := domainRequest().Packages[0]
		pkg.PackagingType = packaging
		assert.Equal(t, want, toWirePackage(pkg).PackagingType.Code, string(packaging))
	}
}

func TestToWirePackage_MetricUnits(t *testing.T) {
	pkg := domainRequest().Packages[0]
	pkg.DimensionUnit = carrier.DimensionCentimeter
	pkg.WeightUnit = carrier.WeightKilogram

	wp := toWirePackage(pkg)
	assert.Equal(t, "CM", wp.Dimensions.UnitOfMeasurement.Code)
	assert.Equal(t, "KGS", wp.PackageWeight.UnitOfMeasurement.Code)
}

func TestToWirePackage_DeclaredValue(t *testing.T) {
	pkg := domainRequest().Packages[0]
	pkg.DeclaredValue = &carrier.Money{Amount: 199.5, Currency: "USD"}

	wp := toWirePackage(pkg)
	require.NotNil(t, wp.PackageServiceOptions)
	require.NotNil(t, wp.PackageServiceOptions.DeclaredValue)
	assert.Equal(t, "USD", wp.PackageServiceOptions.DeclaredValue.CurrencyCode)
	assert.Equal(t, "199.50", wp.PackageServiceOptions.DeclaredValue.MonetaryValue)
}

func TestFromRatedShipment_FullQuote(t *testing.T) {
	rs := ratedShipment{
		Service:               codeDescription{Code: "03"},
		TotalCharges:          wireMonetary{CurrencyCode: "USD", MonetaryValue: "15.82"},
		TransportationCharges: wireMonetary{CurrencyCode: "USD", MonetaryValue: "14.32"},
		ItemizedCharges: itemizedCharges{
			{Code: "375", Description: "Fuel Surcharge", CurrencyCode: "USD", MonetaryValue: "1.50"},
			{Code: "100", CurrencyCode: "USD", MonetaryValue: "0.00"},
		},
		BillingWeight: &wireWeight{
			UnitOfMeasurement: codeDescription{Code: "LBS"},
			Weight:            "5.0",
		},
	}

	quote, err := fromRatedShipment(rs)
	require.NoError(t, err)

	assert.Equal(t, "ups", quote.Carrier)
	assert.Equal(t, "03", quote.ServiceCode)
	assert.Equal(t, "UPS Ground", quote.ServiceName)
	assert.Equal(t, carrier.ServiceGround, quote.ServiceLevel)
	assert.Equal(t, carrier.Money{Amount: 15.82, Currency: "USD"}, quote.TotalCharges)
	assert.Equal(t, carrier.Money{Amount: 14.32, Currency: "USD"}, quote.BaseCharges)
	require.Len(t, quote.Surcharges, 1, "zero-amount charges are dropped")
	assert.Equal(t, "375", quote.Surcharges[0].Code)
	require.NotNil(t, quote.BillingWeight)
	assert.Equal(t, 5.0, quote.BillingWeight.Value)
	assert.Equal(t, carrier.WeightPound, quote.BillingWeight.Unit)
	assert.False(t, quote.GuaranteedDelivery)
}

func TestFromRatedShipment_GuaranteedDeliveryWinsTransitDays(t *testing.T) {
	rs := ratedShipment{
		Service:               codeDescription{Code: "01"},
		TotalCharges:          wireMonetary{CurrencyCode: "USD", MonetaryValue: "45.00"},
		TransportationCharges: wireMonetary{CurrencyCode: "USD", MonetaryValue: "45.00"},
		GuaranteedDelivery: &wireGuaranteedDelivery{
			BusinessDaysInTransit: "1",
			DeliveryByTime:        "10:30 A.M.",
		},
	}
	rs.TimeInTransit = &wireTimeInTransit{}
	rs.TimeInTransit.ServiceSummary.EstimatedArrival.BusinessDaysInTransit = "3"
	rs.TimeInTransit.ServiceSummary.EstimatedArrival.Arrival.Date = "2026-09-03"

	quote, err := fromRatedShipment(rs)
	require.NoError(t, err)
	assert.Equal(t, 1, quote.TransitDays, "guaranteed-delivery block takes precedence")
	assert.True(t, quote.GuaranteedDelivery)
	assert.Equal(t, "2026-09-03", quote.EstimatedDelivery)
}

func TestFromRatedShipment_TimeInTransitFallback(t *testing.T) {
	rs := ratedShipment{
		Service:               codeDescription{Code: "03"},
		TotalCharges:          wireMonetary{CurrencyCode: "USD", MonetaryValue: "15.82"},
		TransportationCharges: wireMonetary{CurrencyCode: "USD", MonetaryValue: "15.82"},
	}
	rs.TimeInTransit = &wireTimeInTransit{}
	rs.TimeInTransit.ServiceSummary.EstimatedArrival.BusinessDaysInTransit = "4"

	quote, err := fromRatedShipment(rs)
	require.NoError(t, err)
	assert.Equal(t, 4, quote.TransitDays)
}

func TestFromRatedShipment_InvalidMonetary(t *testing.T) {
	rs := ratedShipment{
		Service:               codeDescription{Code: "03"},
		TotalCharges:          wireMonetary{CurrencyCode: "USD", MonetaryValue: "not-a-number"},
		TransportationCharges: wireMonetary{CurrencyCode: "USD", MonetaryValue: "1.00"},
	}

	_, err := fromRatedShipment(rs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total charges")
}

func TestResolveServiceName(t *testing.T) {
	assert.Equal(t, "UPS Ground", resolveServiceName("03", "whatever"))
	assert.Equal(t, "UPS Custom Thing", resolveServiceName("99", "UPS Custom Thing"))
	assert.Equal(t, "Service 99", resolveServiceName("99", ""))
}

func TestCodeToServiceLevel_InboundAliases(t *testing.T) {
	assert.Equal(t, carrier.ServiceTwoDay, codeToServiceLevel["59"])
	assert.Equal(t, carrier.ServiceNextDay, codeToServiceLevel["14"])
	// Canonical codes win outbound.
	assert.Equal(t, "02", serviceLevelToCode[carrier.ServiceTwoDay])
	assert.Equal(t, "01", serviceLevelToCode[carrier.ServiceNextDay])
}

func TestServiceCodeTables_RoundTrip(t *testing.T) {
	for level, code := range serviceLevelToCode {
		assert.Equal(t, level, codeToServiceLevel[code], code)
	}
}

func TestRatedShipments_SingleOrArray(t *testing.T) {
	var fromArray ratedShipments
	require.NoError(t, json.Unmarshal([]byte(`[
		{"Service":{"Code":"03"},"TotalCharges":{"CurrencyCode":"USD","MonetaryValue":"15.82"}},
		{"Service":{"Code":"02"},"TotalCharges":{"CurrencyCode":"USD","MonetaryValue":"29.95"}}
	]`), &fromArray))
	require.Len(t, fromArray, 2)

	var fromObject ratedShipments
	require.NoError(t, json.Unmarshal([]byte(
		`{"Service":{"Code":"03"},"TotalCharges":{"CurrencyCode":"USD","MonetaryValue":"15.82"}}`,
	), &fromObject))
	require.Len(t, fromObject, 1)
	assert.Equal(t, fromArray[0], fromObject[0])
}

func TestItemizedCharges_SingleOrArray(t *testing.T) {
	var fromObject itemizedCharges
	require.NoError(t, json.Unmarshal([]byte(
		`{"Code":"375","CurrencyCode":"USD","MonetaryValue":"1.50"}`,
	), &fromObject))
	require.Len(t, fromObject, 1)
	assert.Equal(t, "375", fromObject[0].Code)

	var fromArray itemizedCharges
	require.NoError(t, json.Unmarshal([]byte(
		`[{"Code":"375","CurrencyCode":"USD","MonetaryValue":"1.50"},{"Code":"120","CurrencyCode":"USD","MonetaryValue":"2.25"}]`,
	), &fromArray))
	require.Len(t, fromArray, 2)
}
