package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vikram583135/platepal2.o-sub000/internal/retry"
)

// LoadingCart is the view of a cart the hydration gate polls.
type LoadingCart interface {
	Hydrated() bool
	ItemCount() int
	RawItemCount() int
	Total() decimal.Decimal
}

// WaitForHydration polls c until the cart is known to be loaded, the
// attempts of p run out or ctx ends. The result is false when the cart
// never showed any content; callers then go on with the current state.
func WaitForHydration(ctx context.Context, c LoadingCart, p retry.Policy) bool {
	ok, _ := retry.Do(ctx, p, func(int) (bool, error) {
		return loaded(c), nil
	})
	return ok
}

func loaded(c LoadingCart) bool {
	if c.ItemCount() > 0 || c.RawItemCount() > 0 || c.Total().IsPositive() {
		return true
	}
	return c.Hydrated()
}
