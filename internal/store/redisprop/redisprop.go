// Package redisprop stores student properties in Redis. Each property is a
// hash; a per-name sorted set indexes student ids for lexical paging.
package redisprop

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/progresstrack/internal/store"
)

const (
	fieldValue     = "value"
	fieldUpdatedOn = "updated_on"
)

// Repo implements store.PropertyRepo on Redis.
type Repo struct {
	rdb    goredis.UniversalClient
	prefix string
}

var _ store.PropertyRepo = (*Repo)(nil)

// Options configures a Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // key namespace, "progresstrack" when empty
}

// Dial connects to Redis and verifies the connection with PING.
func Dial(ctx context.Context, opts Options) (*Repo, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address required")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, opts.Prefix), nil
}

// New wraps an existing client.
func New(rdb goredis.UniversalClient, prefix string) *Repo {
	if prefix == "" {
		prefix = "progresstrack"
	}
	return &Repo{rdb: rdb, prefix: prefix}
}

// Close closes the underlying client.
func (r *Repo) Close() error {
	return r.rdb.Close()
}

func (r *Repo) propKey(name, studentID string) string {
	return fmt.Sprintf("%s:prop:%s:%s", r.prefix, name, studentID)
}

func (r *Repo) indexKey(name string) string {
	return fmt.Sprintf("%s:propidx:%s", r.prefix, name)
}

func (r *Repo) Get(ctx context.Context, studentID, name string) (*store.Property, error) {
	fields, err := r.rdb.HGetAll(ctx, r.propKey(name, studentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get property %s/%s: %w", studentID, name, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return decodeProperty(studentID, name, fields)
}

func (r *Repo) Create(ctx context.Context, studentID, name string) (*store.Property, error) {
	p := &store.Property{StudentID: studentID, Name: name, UpdatedOn: time.Now().UTC()}

	created, err := r.rdb.HSetNX(ctx, r.propKey(name, studentID), fieldValue, "").Result()
	if err != nil {
		return nil, fmt.Errorf("create property %s/%s: %w", studentID, name, err)
	}
	if !created {
		return nil, fmt.Errorf("create property %s/%s: already exists", studentID, name)
	}
	if err := r.write(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repo) Put(ctx context.Context, p *store.Property) error {
	if p.UpdatedOn.IsZero() {
		p.UpdatedOn = time.Now().UTC()
	}
	return r.write(ctx, p)
}

func (r *Repo) write(ctx context.Context, p *store.Property) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, r.propKey(p.Name, p.StudentID),
			fieldValue, p.Value,
			fieldUpdatedOn, p.UpdatedOn.Format(time.RFC3339Nano),
		)
		pipe.ZAdd(ctx, r.indexKey(p.Name), goredis.Z{Score: 0, Member: p.StudentID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("put property %s/%s: %w", p.StudentID, p.Name, err)
	}
	return nil
}

// Scan pages through the index in lexical student order. The cursor is the
// last student id of the previous page.
func (r *Repo) Scan(ctx context.Context, name string, opts store.ScanOpts) (store.PropertyPage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = store.DefaultPageSize
	}
	start := "-"
	if opts.Cursor != "" {
		start = "(" + opts.Cursor
	}

	ids, err := r.rdb.ZRangeArgs(ctx, goredis.ZRangeArgs{
		Key:   r.indexKey(name),
		Start: start,
		Stop:  "+",
		ByLex: true,
		Count: int64(limit),
	}).Result()
	if err != nil {
		return store.PropertyPage{}, fmt.Errorf("scan property index %s: %w", name, err)
	}
	if len(ids) == 0 {
		return store.PropertyPage{}, nil
	}

	cmds := make([]*goredis.MapStringStringCmd, len(ids))
	_, err = r.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.propKey(name, id))
		}
		return nil
	})
	if err != nil {
		return store.PropertyPage{}, fmt.Errorf("fetch properties %s: %w", name, err)
	}

	var page store.PropertyPage
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// Indexed but deleted out of band.
			continue
		}
		p, err := decodeProperty(ids[i], name, fields)
		if err != nil {
			return store.PropertyPage{}, err
		}
		page.Items = append(page.Items, *p)
	}
	if len(ids) == limit {
		page.Next = ids[len(ids)-1]
	}
	return page, nil
}

func decodeProperty(studentID, name string, fields map[string]string) (*store.Property, error) {
	p := &store.Property{StudentID: studentID, Name: name, Value: fields[fieldValue]}
	if ts := fields[fieldUpdatedOn]; ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("property %s/%s: bad %s %q: %w", studentID, name, fieldUpdatedOn, ts, err)
		}
		p.UpdatedOn = t
	}
	return p, nil
}
