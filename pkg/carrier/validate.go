package carrier

import (
	"fmt"
)

const (
	minPackages = 1
	maxPackages = 50
)

var knownServiceLevels = map[ServiceLevel]bool{
	ServiceGround:        true,
	ServiceThreeDay:      true,
	ServiceTwoDay:        true,
	ServiceNextDay:       true,
	ServiceNextDaySaver:  true,
	ServiceIntlStandard:  true,
	ServiceIntlExpedited: true,
	ServiceIntlExpress:   true,
	ServiceIntlSaver:     true,
}

// ValidateRateRequest checks a rate request against the domain schema.
// It performs no I/O and runs before any carrier is contacted.
func ValidateRateRequest(req *RateRequest) error {
	if req == nil {
		return NewError(KindValidation, "", "rate request is required")
	}
	if err := validateAddress("origin", req.Origin); err != nil {
		return err
	}
	if err := validateAddress("destination", req.Destination); err != nil {
		return err
	}
	if len(req.Packages) < minPackages || len(req.Packages) > maxPackages {
		return NewError(KindValidation, "",
			fmt.Sprintf("packages: expected between %d and %d, got %d",
				minPackages, maxPackages, len(req.Packages)))
	}
	for i, pkg := range req.Packages {
		if err := validatePackage(i, pkg); err != nil {
			return err
		}
	}
	if req.ServiceLevel != "" && !knownServiceLevels[req.ServiceLevel] {
		return NewError(KindValidation, "",
			fmt.Sprintf("unknown service level %q", req.ServiceLevel))
	}
	for _, c := range req.Carriers {
		if c == "" {
			return NewError(KindValidation, "", "carrier ids must be non-empty")
		}
	}
	return nil
}

func validateAddress(field string, addr Address) error {
	if addr.Line1 == "" {
		return NewError(KindValidation, "", field+": street line 1 is required")
	}
	if addr.City == "" {
		return NewError(KindValidation, "", field+": city is required")
	}
	if addr.PostalCode == "" {
		return NewError(KindValidation, "", field+": postal code is required")
	}
	if len(addr.CountryCode) != 2 {
		return NewError(KindValidation, "",
			fmt.Sprintf("%s: country code must be ISO 3166-1 alpha-2, got %q", field, addr.CountryCode))
	}
	return nil
}

func validatePackage(i int, pkg Package) error {
	if pkg.Length <= 0 || pkg.Width <= 0 || pkg.Height <= 0 {
		return NewError(KindValidation, "",
			fmt.Sprintf("package %d: dimensions must be positive", i))
	}
	if pkg.DimensionUnit != DimensionInch && pkg.DimensionUnit != DimensionCentimeter {
		return NewError(KindValidation, "",
			fmt.Sprintf("package %d: invalid dimension unit %q", i, pkg.DimensionUnit))
	}
	if pkg.Weight <= 0 {
		return NewError(KindValidation, "",
			fmt.Sprintf("package %d: weight must be positive", i))
	}
	if pkg.WeightUnit != WeightPound && pkg.WeightUnit != WeightKilogram {
		return NewError(KindValidation, "",
			fmt.Sprintf("package %d: invalid weight unit %q", i, pkg.WeightUnit))
	}
	if dv := pkg.DeclaredValue; dv != nil {
		if dv.Amount < 0 {
			return NewError(KindValidation, "",
				fmt.Sprintf("package %d: declared value must not be negative", i))
		}
		if len(dv.Currency) != 3 {
			return NewError(KindValidation, "",
				fmt.Sprintf("package %d: declared value currency must be a 3-letter code, got %q", i, dv.Currency))
		}
	}
	return nil
}
