package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"loan-assessment-workers/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS loan_applications`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	client := &PostgresClient{DB: db}
	require.NoError(t, client.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DSN(t *testing.T) {
	dsn := config.PostgresConfig{
		Host: "db", Port: 5432, User: "lender", Password: "pw", Database: "lending", SSLMode: "disable",
	}.GetDSN()
	assert.Equal(t, "host=db port=5432 user=lender password=pw dbname=lending sslmode=disable", dsn)
}

func TestRedis_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	require.NoError(t, client.Submissions().Set(context.Background(), "loan:submission:x", "user-1", 0).Err())
	assert.True(t, mr.Exists("loan:submission:x"))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

type esRecorder struct {
	mu      sync.Mutex
	created bool
	exists  bool
}

func (r *esRecorder) handler(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case req.Method == http.MethodHead && req.URL.Path == "/loan-decisions":
		if r.exists {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case req.Method == http.MethodPut && req.URL.Path == "/loan-decisions":
		r.created = true
		r.exists = true
		_, _ = w.Write([]byte(`{"acknowledged":true,"index":"loan-decisions"}`))
	default:
		_, _ = w.Write([]byte(`{"version":{"number":"8.11.0"},"tagline":"You Know, for Search"}`))
	}
}

func TestElasticsearch_EnsureIndex(t *testing.T) {
	rec := &esRecorder{}
	server := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer server.Close()

	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	require.NoError(t, err)

	require.NoError(t, client.EnsureIndex(context.Background(), "loan-decisions"))
	assert.True(t, rec.created)

	rec.created = false
	require.NoError(t, client.EnsureIndex(context.Background(), "loan-decisions"))
	assert.False(t, rec.created)

	assert.NoError(t, client.Ping())
}
