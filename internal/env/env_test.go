package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	t.Setenv("CHECKOUT_TEST_STRING", "x")
	t.Setenv("CHECKOUT_TEST_INT", "42")
	t.Setenv("CHECKOUT_TEST_BAD_INT", "forty")
	t.Setenv("CHECKOUT_TEST_BOOL", "false")
	t.Setenv("CHECKOUT_TEST_DURATION", "250ms")

	assert.Equal(t, "x", GetString("CHECKOUT_TEST_STRING", "d"))
	assert.Equal(t, "d", GetString("CHECKOUT_TEST_MISSING", "d"))
	assert.Equal(t, 42, GetInt("CHECKOUT_TEST_INT", 1))
	assert.Equal(t, 1, GetInt("CHECKOUT_TEST_BAD_INT", 1))
	assert.False(t, GetBool("CHECKOUT_TEST_BOOL", true))
	assert.Equal(t, 250*time.Millisecond, GetDuration("CHECKOUT_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, GetDuration("CHECKOUT_TEST_MISSING", time.Second))
}
