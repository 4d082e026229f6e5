package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "wasmbuild:job:abc", redisKey("abc"))
}

func TestDecodeJob(t *testing.T) {
	j, err := decodeJob([]byte(`{"id":"abc","state":"RUNNING","request":{"source":"x","language":"rust"},"started_at":12}`))

	assert.Nil(t, err)
	assert.Equal(t, "abc", j.ID)
	assert.Equal(t, int64(12), j.StartedAt)

	_, err = decodeJob([]byte(`{`))
	assert.NotNil(t, err)
}

func TestNewRedisBadURL(t *testing.T) {
	_, err := NewRedis(&Options{URL: "redis://localhost:notaport/zero"})

	assert.ErrorIs(t, err, errors.ErrInvalidArg)
}
