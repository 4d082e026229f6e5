package database

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voidshard/wasmbuild/pkg/errors"
	"github.com/voidshard/wasmbuild/pkg/structs"
)

const (
	redisPrefix      = "wasmbuild:job:"
	redisQueuedSet   = "wasmbuild:queued"
	redisRunningSet  = "wasmbuild:running"
	redisFinishedSet = "wasmbuild:finished"

	// how many times we retry an optimistic transaction that lost a race
	redisMaxRetries = 10

	redisPingTimeout = 5 * time.Second
)

// Redis is a Database keeping each job as one JSON value, plus sorted sets
// of queued, running & finished job ids (scored by CreatedAt, StartedAt &
// FinishedAt) so the tidy routine doesn't need to scan the keyspace.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Database = (*Redis)(nil)

// NewRedis connects to the redis at opts.URL and checks it answers.
func NewRedis(opts *Options) (*Redis, error) {
	ropts, err := redis.ParseURL(opts.url())
	if err != nil {
		return nil, fmt.Errorf("%w %v", errors.ErrInvalidArg, err)
	}
	if opts.TLSConfig != nil {
		ropts.TLSConfig = opts.TLSConfig
	}
	client := redis.NewClient(ropts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{client: client, ttl: opts.ResultTTL}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) InsertJob(ctx context.Context, j *structs.Job) error {
	if err := checkNewJob(j); err != nil {
		return err
	}
	j = prepareNewJob(j)
	data, err := json.Marshal(j)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, redisKey(j.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w job %s already exists", errors.ErrInvalidState, j.ID)
	}
	return r.client.ZAdd(ctx, redisQueuedSet, redis.Z{Score: float64(j.CreatedAt), Member: j.ID}).Err()
}

func (r *Redis) SetJobRunning(ctx context.Context, id string) (*structs.Job, error) {
	return r.update(ctx, id, func(j *structs.Job) error {
		return startJob(j, timeNow())
	})
}

func (r *Redis) SetJobResult(ctx context.Context, id string, result *structs.BuildResult) (*structs.Job, error) {
	return r.update(ctx, id, func(j *structs.Job) error {
		return finishJob(j, result, timeNow())
	})
}

func (r *Redis) Job(ctx context.Context, id string) (*structs.Job, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if err == redis.Nil {
		return nil, notFound(id)
	} else if err != nil {
		return nil, err
	}
	return decodeJob(data)
}

func (r *Redis) ReapRunning(ctx context.Context, before int64, result *structs.BuildResult) ([]string, error) {
	return r.reap(ctx, redisRunningSet, before, result, func(j *structs.Job) bool {
		return j.State == structs.RUNNING && j.StartedAt < before
	})
}

func (r *Redis) ReapQueued(ctx context.Context, before int64, result *structs.BuildResult) ([]string, error) {
	return r.reap(ctx, redisQueuedSet, before, result, func(j *structs.Job) bool {
		return j.State == structs.QUEUED && j.CreatedAt < before
	})
}

// reap finishes jobs in the index set scored before `before`, rechecking
// each with stuck inside its transaction.
func (r *Redis) reap(ctx context.Context, set string, before int64, result *structs.BuildResult, stuck func(j *structs.Job) bool) ([]string, error) {
	if err := result.Validate(); err != nil {
		return nil, err
	}
	ids, err := r.client.ZRangeByScore(ctx, set, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before, 10),
	}).Result()
	if err != nil {
		return nil, err
	}

	reaped := []string{}
	for _, id := range ids {
		_, err := r.update(ctx, id, func(j *structs.Job) error {
			if !stuck(j) {
				return fmt.Errorf("%w job %s no longer stuck", errors.ErrInvalidState, id)
			}
			return finishJob(j, result, timeNow())
		})
		switch {
		case err == nil:
			reaped = append(reaped, id)
		case stderrs.Is(err, errors.ErrNotFound):
			// expired or deleted under us; drop the stale index entry
			r.client.ZRem(ctx, set, id)
		case stderrs.Is(err, errors.ErrInvalidState):
			slog.Debug("Skipping reap of job", "jobID", id, "error", err)
		default:
			return reaped, err
		}
	}
	sort.Strings(reaped)
	return reaped, nil
}

func (r *Redis) DeleteFinished(ctx context.Context, before int64) (int64, error) {
	ids, err := r.client.ZRangeByScore(ctx, redisFinishedSet, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before, 10),
	}).Result()
	if err != nil || len(ids) == 0 {
		return 0, err
	}

	keys := make([]string, len(ids))
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		keys[i] = redisKey(id)
		members[i] = id
	}

	var deleted *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, redisFinishedSet, members...)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted.Val(), nil
}

// update runs fn against the current job inside a WATCH, writing the result
// back (and fixing up the indexes) in a MULTI. Lost races are retried.
func (r *Redis) update(ctx context.Context, id string, fn func(j *structs.Job) error) (*structs.Job, error) {
	key := redisKey(id)
	var out *structs.Job

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return notFound(id)
		} else if err != nil {
			return err
		}
		j, err := decodeJob(data)
		if err != nil {
			return err
		}
		if err := fn(j); err != nil {
			return err
		}
		data, err = json.Marshal(j)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			switch j.State {
			case structs.RUNNING:
				pipe.Set(ctx, key, data, 0)
				pipe.ZRem(ctx, redisQueuedSet, id)
				pipe.ZAdd(ctx, redisRunningSet, redis.Z{Score: float64(j.StartedAt), Member: id})
			case structs.FINISHED:
				pipe.Set(ctx, key, data, r.ttl)
				pipe.ZRem(ctx, redisQueuedSet, id)
				pipe.ZRem(ctx, redisRunningSet, id)
				pipe.ZAdd(ctx, redisFinishedSet, redis.Z{Score: float64(j.FinishedAt), Member: id})
			default:
				pipe.Set(ctx, key, data, 0)
			}
			return nil
		})
		if err == nil {
			out = j
		}
		return err
	}

	for i := 0; i < redisMaxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		return out, err
	}
	return nil, fmt.Errorf("%w job %s: too many concurrent updates", errors.ErrInvalidState, id)
}

func redisKey(id string) string {
	return redisPrefix + id
}

func decodeJob(data []byte) (*structs.Job, error) {
	j := &structs.Job{}
	if err := json.Unmarshal(data, j); err != nil {
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return j, nil
}
