package queue

import (
	"os"
	"testing"
)

func liveRedis(t *testing.T) string {
	url := os.Getenv("WASMBUILD_TEST_REDIS")
	if url == "" {
		t.Skip("WASMBUILD_TEST_REDIS not set")
	}
	return url
}
