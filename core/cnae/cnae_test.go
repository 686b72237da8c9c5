package cnae

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type repoMock struct {
	calls   int
	filters []SearchFilter
	err     error
}

func (r *repoMock) SearchActivities(_ context.Context, f SearchFilter) (SearchResult, error) {
	r.calls++
	r.filters = append(r.filters, f)
	if r.err != nil {
		return SearchResult{}, r.err
	}
	return SearchResult{
		Data:    []Activity{{ID: 1, Code: "4781-4/00", Description: "Comércio varejista de artigos do vestuário"}},
		Page:    f.Page,
		PerPage: f.PerPage,
		Total:   1,
	}, nil
}

type cacheMock struct {
	vals   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newCacheMock() *cacheMock {
	return &cacheMock{vals: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *cacheMock) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	val, ok := c.vals[key]
	return val, ok, nil
}

func (c *cacheMock) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	c.vals[key] = val
	c.ttls[key] = ttl
	return nil
}

func TestSearchCaches(t *testing.T) {
	repo := new(repoMock)
	cache := newCacheMock()
	svc := NewService(repo, cache, time.Hour, nopLogger{})
	ctx := context.Background()

	first, err := svc.Search(ctx, SearchFilter{Search: " Vestuário "})
	require.NoError(t, err)
	second, err := svc.Search(ctx, SearchFilter{Search: "vestuário", Page: 1, PerPage: 20})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "vestuário", repo.filters[0].Search)
	assert.Equal(t, time.Hour, cache.ttls["cnae:vestuário:1:20"])
}

func TestSearchWithoutCache(t *testing.T) {
	repo := new(repoMock)
	svc := NewService(repo, nil, time.Hour, nopLogger{})

	for i := 0; i < 2; i++ {
		_, err := svc.Search(context.Background(), SearchFilter{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, repo.calls)
}

func TestSearchCacheFailure(t *testing.T) {
	repo := new(repoMock)
	cache := newCacheMock()
	cache.getErr = errors.New("connection refused")
	svc := NewService(repo, cache, time.Hour, nopLogger{})

	res, err := svc.Search(context.Background(), SearchFilter{})
	require.NoError(t, err)
	assert.Len(t, res.Data, 1)
}

func TestSearchRepoError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&repoMock{err: boom}, nil, time.Hour, nopLogger{})

	_, err := svc.Search(context.Background(), SearchFilter{})
	assert.Equal(t, boom, errors.Cause(err))
}
