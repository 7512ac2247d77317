package support

import (
	"context"
	"errors"
	"testing"
)

func TestGetRedisClientDisabled(t *testing.T) {
	client, err := GetRedisClient(context.Background(), "")
	if !errors.Is(err, ErrRedisDisabled) {
		t.Fatalf("GetRedisClient returned %v, want ErrRedisDisabled", err)
	}
	if client != nil {
		t.Fatal("GetRedisClient returned a client without a url")
	}
}

func TestGetRedisClientRejectsBadURL(t *testing.T) {
	if _, err := GetRedisClient(context.Background(), "not a url"); err == nil {
		t.Fatal("GetRedisClient accepted an invalid url")
	}
}

func TestCloseRedisClientWithoutClient(t *testing.T) {
	if err := CloseRedisClient(); err != nil {
		t.Fatalf("CloseRedisClient returned %v", err)
	}
}
