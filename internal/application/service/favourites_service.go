package service

import (
	"context"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/hearthware/ovenlink/internal/domain/models"
	domainsvc "github.com/hearthware/ovenlink/internal/domain/service"
	"github.com/hearthware/ovenlink/pkg/constants"
	"github.com/hearthware/ovenlink/pkg/errors"
	"github.com/hearthware/ovenlink/pkg/logger"
)

// FavouritesService fetches the user's saved presets and turns a chosen
// preset into a run command. The flattened list lives in a TTL cache; a
// failed refresh leaves the previous entry intact. Owned by the session
// goroutine.
type FavouritesService struct {
	gateway    domainsvc.CloudGateway
	dispatcher *CommandDispatcher
	said       string
	token      func() string
	cache      *gocache.Cache
	log        logger.Logger
}

// NewFavouritesService creates the adapter for one appliance. token supplies
// the current account access token at call time.
func NewFavouritesService(
	gateway domainsvc.CloudGateway,
	dispatcher *CommandDispatcher,
	said string,
	token func() string,
	log logger.Logger,
) *FavouritesService {
	return &FavouritesService{
		gateway:    gateway,
		dispatcher: dispatcher,
		said:       said,
		token:      token,
		cache:      gocache.New(constants.FavouritesCacheTTL, constants.FavouritesCacheTTL),
		log:        log,
	}
}

// Refresh re-fetches and replaces the favourites list. On failure the
// previous list stays cached; the error is returned so the caller can decide
// whether it matters (session setup treats it as non-fatal).
func (f *FavouritesService) Refresh(ctx context.Context) error {
	favourites, err := f.gateway.Favourites(ctx, f.token(), f.said)
	if err != nil {
		f.log.Warn(ctx, "favourites refresh failed, keeping previous list", logger.Fields{
			"said":  f.said,
			"error": err.Error(),
		})
		return err
	}

	f.cache.Set(f.said, favourites, gocache.DefaultExpiration)
	f.log.Debug(ctx, "favourites refreshed", logger.Fields{
		"said":  f.said,
		"count": len(favourites),
	})
	return nil
}

// List returns the cached favourites, fetching once when nothing is cached.
func (f *FavouritesService) List(ctx context.Context) ([]models.Favourite, error) {
	if cached, ok := f.cache.Get(f.said); ok {
		return cached.([]models.Favourite), nil
	}
	if err := f.Refresh(ctx); err != nil {
		return nil, err
	}
	cached, _ := f.cache.Get(f.said)
	favourites, _ := cached.([]models.Favourite)
	return favourites, nil
}

// Trigger builds a run command from the stored favourite and sends it.
// Recognized cycle fields map onto command fields; absent fields are simply
// omitted, partial presets are valid.
func (f *FavouritesService) Trigger(ctx context.Context, id string) error {
	favourites, err := f.List(ctx)
	if err != nil {
		return err
	}

	var favourite *models.Favourite
	for i := range favourites {
		if favourites[i].ID == id {
			favourite = &favourites[i]
			break
		}
	}
	if favourite == nil {
		return errors.ErrFavouriteNotFound(id)
	}

	cycle, err := favourite.FirstCycle()
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		constants.FieldSessionID: uuid.NewString(),
	}
	if cycle.RecipeName != "" {
		fields["recipeId"] = cycle.RecipeName
	}
	if cycle.TargetTemperature != nil {
		fields["targetTemperature"] = *cycle.TargetTemperature
	}
	if cycle.PreheatType != "" {
		fields["preheat"] = cycle.PreheatType
	}
	if cycle.CookTimeSeconds != nil {
		fields["cookTimer"] = map[string]interface{}{
			"command": "run",
			"time":    *cycle.CookTimeSeconds,
		}
	}

	return f.dispatcher.Send(ctx, favourite.Cavity, constants.CommandRun, fields)
}
