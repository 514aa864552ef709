package geo

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_ShouldProxy(t *testing.T) {
	router := NewRouter([]string{"1.2.3.0/24", "10.0.0.0/8"})

	t.Run("ip inside cidr", func(t *testing.T) {
		assert.True(t, router.ShouldProxy("1.2.3.4"))
		assert.True(t, router.ShouldProxy("10.20.30.40"))
	})

	t.Run("ip outside cidr", func(t *testing.T) {
		assert.False(t, router.ShouldProxy("8.8.8.8"))
		assert.False(t, router.ShouldProxy("1.2.4.1"))
	})

	t.Run("local addresses never proxied", func(t *testing.T) {
		assert.False(t, router.ShouldProxy("127.0.0.1"))
		assert.False(t, router.ShouldProxy("localhost"))
		assert.False(t, router.ShouldProxy(""))
	})

	t.Run("unparseable ip defaults to local", func(t *testing.T) {
		assert.False(t, router.ShouldProxy("not-an-ip"))
	})
}

func TestNewRouter_InvalidCIDR(t *testing.T) {
	// 非法条目跳过，不影响其余规则
	router := NewRouter([]string{"bad-cidr", "192.168.0.0/16"})

	assert.True(t, router.ShouldProxy("192.168.1.1"))
	assert.False(t, router.ShouldProxy("172.16.0.1"))
}

func TestExtractRealIP(t *testing.T) {
	t.Run("x-real-ip takes precedence", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-Real-Ip", "1.1.1.1")
		h.Set("X-Forwarded-For", "2.2.2.2, 3.3.3.3")

		assert.Equal(t, "1.1.1.1", ExtractRealIP(h))
	})

	t.Run("first of x-forwarded-for", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-Forwarded-For", "2.2.2.2, 3.3.3.3")

		assert.Equal(t, "2.2.2.2", ExtractRealIP(h))
	})

	t.Run("no headers", func(t *testing.T) {
		assert.Equal(t, "", ExtractRealIP(http.Header{}))
	})
}
