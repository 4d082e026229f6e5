package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voidshard/wasmbuild/pkg/errors"
	"github.com/voidshard/wasmbuild/pkg/structs"
)

const (
	pgTable = "build_job"
)

var (
	pgColumns = []string{
		"id",
		"language",
		"source",
		"manifest",
		"state",
		"result_status",
		"result_message",
		"result_details",
		"js_glue",
		"wasm",
		"etag",
		"created_at",
		"started_at",
		"finished_at",
	}
)

// Postgres is a Database implementation that uses postgres. The schema is
// set up by Migrate.
type Postgres struct {
	opts *Options
	pool *pgxpool.Pool
}

var _ Database = (*Postgres)(nil)

// NewPostgres returns a new Postgres database connection.
func NewPostgres(opts *Options) (*Postgres, error) {
	opts.SetDefaults()
	pool, err := pgxpool.New(context.Background(), opts.url())
	if err != nil {
		return nil, err
	}
	return &Postgres{pool: pool, opts: opts}, nil
}

// Close shuts down the database connection.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// InsertJob inserts a new QUEUED job.
func (p *Postgres) InsertJob(ctx context.Context, j *structs.Job) error {
	if err := checkNewJob(j); err != nil {
		return err
	}
	qstr, args := toJobSqlArgs(1, prepareNewJob(j))
	qstr = fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s ON CONFLICT (id) DO NOTHING;`, pgTable, strings.Join(pgColumns, ", "), qstr)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, args...)
	if err != nil {
		return err
	}
	if info.RowsAffected() == 0 {
		return fmt.Errorf("%w job %s already exists", errors.ErrInvalidState, j.ID)
	}
	return nil
}

// SetJobRunning moves a QUEUED job to RUNNING.
func (p *Postgres) SetJobRunning(ctx context.Context, id string) (*structs.Job, error) {
	qstr := fmt.Sprintf(`UPDATE %s SET state=$1, etag=$2, started_at=$3 WHERE id=$4 AND state=$5 RETURNING %s;`,
		pgTable, strings.Join(pgColumns, ", "),
	)
	args := []interface{}{structs.RUNNING, newETag(), timeNow(), id, structs.QUEUED}
	return p.transition(ctx, id, structs.RUNNING, qstr, args)
}

// SetJobResult moves a QUEUED or RUNNING job to FINISHED.
func (p *Postgres) SetJobResult(ctx context.Context, id string, result *structs.BuildResult) (*structs.Job, error) {
	if err := result.Validate(); err != nil {
		return nil, err
	}
	qstr := fmt.Sprintf(`UPDATE %s SET state=$1, etag=$2, finished_at=$3, result_status=$4, result_message=$5, result_details=$6, js_glue=$7, wasm=$8
	WHERE id=$9 AND state IN ($10, $11) RETURNING %s;`,
		pgTable, strings.Join(pgColumns, ", "),
	)
	args := append(
		[]interface{}{structs.FINISHED, newETag(), timeNow()},
		toResultSqlArgs(result)...,
	)
	args = append(args, id, structs.QUEUED, structs.RUNNING)
	return p.transition(ctx, id, structs.FINISHED, qstr, args)
}

// Job returns the job with the given id.
func (p *Postgres) Job(ctx context.Context, id string) (*structs.Job, error) {
	qstr := fmt.Sprintf(`SELECT %s FROM %s WHERE id=$1;`, strings.Join(pgColumns, ", "), pgTable)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	j, err := scanJob(conn.QueryRow(ctx, qstr, id))
	if err == pgx.ErrNoRows {
		return nil, notFound(id)
	}
	return j, err
}

// ReapRunning finishes RUNNING jobs started before `before`.
func (p *Postgres) ReapRunning(ctx context.Context, before int64, result *structs.BuildResult) ([]string, error) {
	return p.reap(ctx, structs.RUNNING, "started_at", before, result)
}

// ReapQueued finishes QUEUED jobs created before `before`.
func (p *Postgres) ReapQueued(ctx context.Context, before int64, result *structs.BuildResult) ([]string, error) {
	return p.reap(ctx, structs.QUEUED, "created_at", before, result)
}

// reap finishes jobs in state whose timestamp column is before `before`.
func (p *Postgres) reap(ctx context.Context, state structs.State, column string, before int64, result *structs.BuildResult) ([]string, error) {
	if err := result.Validate(); err != nil {
		return nil, err
	}
	qstr := fmt.Sprintf(`UPDATE %s SET state=$1, etag=$2, finished_at=$3, result_status=$4, result_message=$5, result_details=$6, js_glue=$7, wasm=$8
	WHERE state=$9 AND %s < $10 RETURNING id;`, pgTable, column)
	args := append(
		[]interface{}{structs.FINISHED, newETag(), timeNow()},
		toResultSqlArgs(result)...,
	)
	args = append(args, state, before)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteFinished removes jobs that finished before `before`.
func (p *Postgres) DeleteFinished(ctx context.Context, before int64) (int64, error) {
	qstr := fmt.Sprintf(`DELETE FROM %s WHERE state=$1 AND finished_at < $2;`, pgTable)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, structs.FINISHED, before)
	if err != nil {
		return 0, err
	}
	return info.RowsAffected(), nil
}

// transition runs a conditional UPDATE .. RETURNING. If no row matched we
// look the job up to tell "missing" from "wrong state".
func (p *Postgres) transition(ctx context.Context, id string, to structs.State, qstr string, args []interface{}) (*structs.Job, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	j, err := scanJob(conn.QueryRow(ctx, qstr, args...))
	if err == nil {
		return j, nil
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	current, err := scanJob(conn.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE id=$1;`, strings.Join(pgColumns, ", "), pgTable), id))
	if err == pgx.ErrNoRows {
		return nil, notFound(id)
	} else if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w job %s is %s, cannot move to %s", errors.ErrInvalidState, id, current.State, to)
}

// toJobSqlArgs converts a job into a SQL values string & args (for an insert)
func toJobSqlArgs(offset int, j *structs.Job) (string, []interface{}) {
	vals := []string{}
	for i := offset; i < len(pgColumns)+offset; i++ {
		vals = append(vals, fmt.Sprintf("$%d", i))
	}
	args := []interface{}{
		j.ID,
		j.Request.Language,
		j.Request.Source,
		j.Request.Manifest,
		j.State,
	}
	args = append(args, toResultSqlArgs(j.Result)...)
	args = append(args,
		j.ETag,
		j.CreatedAt,
		j.StartedAt,
		j.FinishedAt,
	)
	return fmt.Sprintf("(%s)", strings.Join(vals, ", ")), args
}

// toResultSqlArgs returns the result columns (status, message, details,
// js_glue, wasm), all NULL for a nil result.
func toResultSqlArgs(r *structs.BuildResult) []interface{} {
	if r == nil {
		return []interface{}{nil, nil, nil, nil, nil}
	}
	return []interface{}{
		r.Status,
		r.Message,
		r.Details,
		r.JSGlue,
		r.Wasm,
	}
}

// scanJob reads one row of pgColumns.
func scanJob(row pgx.Row) (*structs.Job, error) {
	j := &structs.Job{}
	var (
		state   string
		status  *string
		message *string
		details *string
		glue    *string
		wasm    []byte
	)
	err := row.Scan(
		&j.ID,
		&j.Request.Language,
		&j.Request.Source,
		&j.Request.Manifest,
		&state,
		&status,
		&message,
		&details,
		&glue,
		&wasm,
		&j.ETag,
		&j.CreatedAt,
		&j.StartedAt,
		&j.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	j.State = structs.ToState(state)
	if j.State == "" {
		return nil, fmt.Errorf("%w job %s has unknown state %q", errors.ErrInvalidState, j.ID, state)
	}
	if status != nil {
		j.Result = &structs.BuildResult{
			Status:  structs.ToResultStatus(*status),
			Message: deref(message),
			Details: deref(details),
			JSGlue:  deref(glue),
			Wasm:    wasm,
		}
		if j.Result.Status == "" {
			return nil, fmt.Errorf("%w job %s has unknown result status %q", errors.ErrInvalidState, j.ID, *status)
		}
	}
	return j, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
