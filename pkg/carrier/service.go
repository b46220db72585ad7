package carrier

import (
	"context"
	"sort"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RateService is the rate-shopping entry point: it validates a request,
// resolves the carrier set, fans out concurrently, and aggregates quotes
// with partial-failure tolerance.
type RateService struct {
	registry *Registry
	logger   *otelzap.Logger
}

// NewRateService creates a rate-shopping service over a registry.
func NewRateService(registry *Registry, logger *otelzap.Logger) *RateService {
	return &RateService{
		registry: registry,
		logger:   logger,
	}
}

// GetQuotes fetches quotes from every resolved carrier. One carrier's
// failure never blocks another's success; an error is returned only when
// no carrier produced any quote. Quote order is imposed by the price
// sort, independent of carrier completion order.
func (s *RateService) GetQuotes(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	if err := ValidateRateRequest(req); err != nil {
		return nil, err
	}

	resolved, failures := s.resolveProviders(req.Carriers)
	if len(resolved) == 0 && len(failures) == 0 {
		return nil, NewError(KindCarrierUnavailable, "", "no carriers support rating")
	}

	names := make([]string, 0, len(resolved))
	for _, p := range resolved {
		names = append(names, p.Name())
	}

	s.logger.Info("Fetching rate quotes",
		zap.Strings("carriers", names),
		zap.Int("package_count", len(req.Packages)),
	)

	// Indexed slots keep "first failure" deterministic in carrier
	// resolution order, regardless of goroutine completion order.
	results := make([][]RateQuote, len(resolved))
	errs := make([]*Error, len(resolved))

	var g errgroup.Group
	for i, p := range resolved {
		i, p := i, p
		g.Go(func() error {
			quotes, err := p.GetRates(ctx, req)
			if err != nil {
				errs[i] = Coerce(err, p.Name())
				return nil
			}
			results[i] = quotes
			return nil
		})
	}
	g.Wait()

	var quotes []RateQuote
	for _, r := range results {
		quotes = append(quotes, r...)
	}
	for _, e := range errs {
		if e != nil {
			failures = append(failures, e)
		}
	}

	if len(quotes) == 0 && len(failures) > 0 {
		return nil, failures[0]
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].TotalCharges.Amount < quotes[j].TotalCharges.Amount
	})

	if len(failures) > 0 {
		for _, f := range failures {
			s.logger.Warn("Carrier failed during rate shopping",
				zap.String("carrier", f.Carrier),
				zap.String("kind", string(f.Kind)),
				zap.Error(f),
			)
		}
	}

	return &RateResponse{
		Quotes:        quotes,
		Carriers:      names,
		RequestedAt:   time.Now(),
		PartialErrors: failures,
	}, nil
}

// resolveProviders returns the providers to fan out to. Unknown carrier
// ids in an explicit list are tolerated as per-carrier failures so that
// the remaining carriers still run.
func (s *RateService) resolveProviders(carriers []string) ([]Provider, []*Error) {
	if len(carriers) == 0 {
		return s.registry.ProvidersFor(OperationRate), nil
	}

	var resolved []Provider
	var failures []*Error
	for _, name := range carriers {
		p, err := s.registry.Get(name)
		if err != nil {
			failures = append(failures, Coerce(err, name))
			continue
		}
		resolved = append(resolved, p)
	}
	return resolved, failures
}
