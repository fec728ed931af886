package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vikram583135/platepal2.o-sub000/internal/retry"
)

type loadingCart struct {
	calls    int
	loadedAt int
	total    decimal.Decimal
}

func (c *loadingCart) Hydrated() bool { return false }

func (c *loadingCart) ItemCount() int {
	c.calls++
	if c.loadedAt > 0 && c.calls >= c.loadedAt {
		return 1
	}
	return 0
}

func (c *loadingCart) RawItemCount() int { return 0 }
func (c *loadingCart) Total() decimal.Decimal { return c.total }

var pollPolicy = retry.Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}

func TestWaitForHydration_GivesUpAfterAttempts(t *testing.T) {
	p := &loadingCart{}
	assert.False(t, WaitForHydration(context.Background(), p, pollPolicy))
	assert.Equal(t, 5, p.calls)
}

func TestWaitForHydration_ItemsAppear(t *testing.T) {
	p := &loadingCart{loadedAt: 3}
	assert.True(t, WaitForHydration(context.Background(), p, pollPolicy))
	assert.Equal(t, 3, p.calls)
}

func TestWaitForHydration_PositiveTotal(t *testing.T) {
	p := &loadingCart{total: decimal.NewFromInt(1)}
	assert.True(t, WaitForHydration(context.Background(), p, pollPolicy))
	assert.Equal(t, 1, p.calls)
}

func TestWaitForHydration_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &loadingCart{}
	assert.False(t, WaitForHydration(ctx, p, retry.Policy{MaxAttempts: 5, BaseDelay: time.Hour}))
	assert.Equal(t, 1, p.calls)
}
