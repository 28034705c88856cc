package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/lysyi3m/tube-comb/app/feed"
)

var (
	ErrNotFound = errors.New("channel id not found")

	// errNotConfigured marks a strategy that has nothing to work with for this channel.
	errNotConfigured = errors.New("strategy not configured")
)

var keyPattern = regexp.MustCompile(`^UC[0-9A-Za-z_-]{22}$`)

// ValidKey reports whether s has the shape of a stable channel id.
func ValidKey(s string) bool {
	return keyPattern.MatchString(s)
}

type Strategy interface {
	Name() string
	Resolve(ctx context.Context, channelConfig *feed.Config) (string, error)
}

type Resolution struct {
	Key      string
	Strategy string
}

type Resolver struct {
	strategies []Strategy
}

func New(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve tries each strategy in order and returns the first valid id.
// ErrNotFound is returned when every strategy misses.
func (r *Resolver) Resolve(ctx context.Context, channelConfig *feed.Config) (Resolution, error) {
	for _, strategy := range r.strategies {
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}

		key, err := strategy.Resolve(ctx, channelConfig)
		switch {
		case errors.Is(err, errNotConfigured):
			slog.Debug("Resolver strategy not configured", "channel", channelConfig.ID, "strategy", strategy.Name())
			continue
		case err != nil:
			slog.Debug("Resolver strategy failed", "channel", channelConfig.ID, "strategy", strategy.Name(), "error", err)
			continue
		case !ValidKey(key):
			slog.Debug("Resolver strategy returned malformed id", "channel", channelConfig.ID, "strategy", strategy.Name(), "key", key)
			continue
		}

		return Resolution{Key: key, Strategy: strategy.Name()}, nil
	}

	return Resolution{}, fmt.Errorf("%w: %s", ErrNotFound, channelConfig.Reference)
}
