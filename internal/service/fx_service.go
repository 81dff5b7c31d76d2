package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/creditai/pricing-service/internal/integrations/cbr"
	"github.com/creditai/pricing-service/internal/repository"
)

// fxCacheKey stores the latest derived USD/INR rate.
const fxCacheKey = "fx:usd-inr"

// fxCacheTTL keeps a fetched rate for half a day; the daily refresh renews
// it before expiry.
const fxCacheTTL = 12 * time.Hour

// Rate sources reported by USDINR.
const (
	FXSourceCBR    = "cbr"
	FXSourceCache  = "cache"
	FXSourceStatic = "static"
)

// QuoteSource fetches the daily currency quote sheet.
type QuoteSource interface {
	GetDailyQuotes() (map[string]cbr.Quote, error)
}

// FXService resolves the working USD/INR rate: cached quote first, fresh
// fetch second, static fallback when the upstream is unavailable.
type FXService struct {
	source   QuoteSource
	cache    repository.RateCache
	fallback float64
	log      *logrus.Logger
}

// NewFXService builds the FX service. source and cache may be nil; the
// static fallback rate then always wins.
func NewFXService(source QuoteSource, cache repository.RateCache, fallback float64, log *logrus.Logger) *FXService {
	return &FXService{source: source, cache: cache, fallback: fallback, log: log}
}

// USDINR returns the working USD/INR rate and where it came from.
func (s *FXService) USDINR(ctx context.Context) (float64, string) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, fxCacheKey); err == nil {
			if rate, err := strconv.ParseFloat(cached, 64); err == nil && rate > 0 {
				return rate, FXSourceCache
			}
		}
	}

	rate, err := s.fetch(ctx)
	if err != nil {
		s.log.Warnf("FX fetch failed, using static USD/INR rate %.2f: %v", s.fallback, err)
		return s.fallback, FXSourceStatic
	}
	return rate, FXSourceCBR
}

// Refresh fetches the live rate and primes the cache. Runs at startup and
// on the daily schedule.
func (s *FXService) Refresh(ctx context.Context) error {
	rate, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	s.log.Infof("Refreshed USD/INR rate: %.4f", rate)
	return nil
}

func (s *FXService) fetch(ctx context.Context) (float64, error) {
	if s.source == nil {
		return 0, fmt.Errorf("no quote source configured")
	}
	quotes, err := s.source.GetDailyQuotes()
	if err != nil {
		return 0, fmt.Errorf("fetch daily quotes: %w", err)
	}
	rate, err := cbr.CrossRate(quotes, cbr.CurrencyUSD, cbr.CurrencyINR)
	if err != nil {
		return 0, fmt.Errorf("derive USD/INR: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, fxCacheKey, strconv.FormatFloat(rate, 'f', -1, 64), fxCacheTTL); err != nil {
			s.log.Warnf("Failed to cache USD/INR rate: %v", err)
		}
	}
	return rate, nil
}
