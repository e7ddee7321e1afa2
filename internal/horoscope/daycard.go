package horoscope

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/cache"
	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
	"github.com/rs/zerolog/log"
)

// DayCardTTL keeps a dealt card for the rest of its day.
const DayCardTTL = 24 * time.Hour

// DealtCard is a card as handed to a user.
type DealtCard struct {
	DayCard
	Reused bool   `json:"reused"`
	Date   string `json:"date"`
}

// DayCardDealer deals one card per user per UTC day. Repeated requests on the
// same day return the same card.
type DayCardDealer struct {
	mu    sync.Mutex
	cache cache.ContentCache[DayCard]
	cards []DayCard
	now   func() time.Time
}

// NewDayCardDealer creates a dealer backed by the cache. A nil clock uses
// time.Now.
func NewDayCardDealer(c cache.ContentCache[DayCard], clock func() time.Time) *DayCardDealer {
	if clock == nil {
		clock = time.Now
	}
	return &DayCardDealer{
		cache: c,
		cards: DayCards,
		now:   clock,
	}
}

// Deal returns today's card for the user, drawing a new one if none has been
// dealt yet.
func (d *DayCardDealer) Deal(ctx context.Context, userID int64) (DealtCard, error) {
	now := d.now().UTC()
	date := now.Format(time.DateOnly)
	key := resolver.DailyKey("daycard", strconv.FormatInt(userID, 10), now).String()

	// serialize so concurrent first requests for a user cannot draw twice
	d.mu.Lock()
	defer d.mu.Unlock()

	card, found, err := d.cache.Get(ctx, key)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("day card cache read failed, dealing new card")
	}
	if found {
		return DealtCard{DayCard: card, Reused: true, Date: date}, nil
	}

	card, _ = PickRandom(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), d.cards)

	if err := d.cache.Set(ctx, key, card); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("day card cache write failed")
	}

	log.Ctx(ctx).Debug().Int64("user_id", userID).Str("card", card.Title).Msg("day card dealt")

	return DealtCard{DayCard: card, Reused: false, Date: date}, nil
}
