package store

import (
	"os"
	"testing"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("FEED_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FEED_TEST_REDIS_ADDR not set")
	}
	s, err := NewRedisStore(addr, 15)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	defer s.Close()
	storeContract(t, s)
}
