package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"vsix-sync/internal/adapters"
	"vsix-sync/internal/core"
)

const defaultServeAddr = ":6789"

// Serve runs the local marketplace for one market until the context is
// cancelled.
func (s Service) Serve(ctx context.Context, req ServeRequest) error {
	spec, err := s.loadMarkets(ctx, req.MarketsPath)
	if err != nil {
		return err
	}
	market, err := core.FindMarket(spec, req.Market)
	if err != nil {
		return err
	}
	addr := firstNonEmpty(req.Addr, defaultServeAddr)
	server := &http.Server{
		Addr:    addr,
		Handler: adapters.NewGalleryServer(market.Directory, s.GalleryIndex).Handler(),
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("market", market.Name).
			Msg("serving local marketplace")
		errs <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
