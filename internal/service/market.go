package service

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/engine"
	"github.com/efreitasn/marketcore/internal/metrics"
)

const maxTextLength = 256

// Notifier receives order lifecycle events after a successful operation.
type Notifier interface {
	DispatchOrderEvent(event string, o domain.Order)
}

// MarketService validates request shapes, runs marketplace operations and
// reports their outcome through logs, metrics and order event notifications.
type MarketService struct {
	market   *engine.Marketplace
	notifier Notifier
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

// NewMarketService creates a MarketService. notifier may be nil.
func NewMarketService(market *engine.Marketplace, notifier Notifier, log zerolog.Logger, m *metrics.Metrics) *MarketService {
	return &MarketService{
		market:   market,
		notifier: notifier,
		log:      log.With().Str("component", "market").Logger(),
		metrics:  m,
	}
}

// observe records the outcome of a mutating operation.
func (s *MarketService) observe(op string, caller domain.Principal, err error) {
	s.metrics.ObserveOperation(op, err)
	if err != nil {
		s.log.Info().Err(err).Str("operation", op).Str("caller", string(caller)).Msg("operation rejected")
		return
	}
	s.log.Info().Str("operation", op).Str("caller", string(caller)).Msg("operation applied")
}

func (s *MarketService) notify(event string, o domain.Order) {
	if s.notifier == nil {
		return
	}
	s.notifier.DispatchOrderEvent(event, o)
}

// checkLength bounds free-text fields. Empty values are accepted.
func checkLength(field, v string) error {
	if len(v) > maxTextLength {
		return &domain.ValidationError{Message: fmt.Sprintf("%s must be at most %d characters", field, maxTextLength)}
	}
	return nil
}

// toUint32 narrows a request integer to the 32-bit range used for prices,
// stock, quantities and funds.
func toUint32(field string, v int64) (uint32, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, &domain.ValidationError{
			Message: fmt.Sprintf("%s must be between 0 and %d", field, uint32(math.MaxUint32)),
		}
	}
	return uint32(v), nil
}
