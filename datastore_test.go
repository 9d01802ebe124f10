package gtx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdbsoft/gtx/api"
	"github.com/xdbsoft/gtx/rules"
)

func ordersConfig(driver, dsn string) Config {
	return Config{
		Storage: StorageConfig{Driver: driver, DSN: dsn},
		Collections: []CollectionDefinition{
			{
				Name:     "orders",
				Sortable: []string{"amount"},
				Mode:     "all",
				Rules: []rules.Rule{
					{Name: "active", Where: []rules.Where{{Field: "status", Value: "active"}}},
					{Name: "region", Where: []rules.Where{{Field: "region", Value: "{request.region}"}}},
				},
			},
			{
				Name: "notes",
				Rules: []rules.Rule{
					{Name: "admin", If: `user.name == "admin"`},
					{Name: "owner", Where: []rules.Where{{Field: "owner", Value: "{user.id}"}}},
				},
			},
		},
	}
}

func populate(t *testing.T, ctx context.Context, ds *DataStore) {
	tx, err := ds.BeginTransaction(ctx)
	require.NoError(t, err)
	defer tx.Close(ctx)

	for _, props := range []map[string]interface{}{
		{"status": "active", "region": "US", "amount": 10},
		{"status": "active", "region": "EU", "amount": 20},
		{"status": "closed", "region": "US", "amount": 30},
		{"status": "active", "region": "US", "amount": 40},
	} {
		d, err := tx.CreateObject(ctx, "orders")
		require.NoError(t, err)
		d.Properties = props
	}
	for _, owner := range []string{"u1", "u2", "u1"} {
		d, err := tx.CreateObject(ctx, "notes")
		require.NoError(t, err)
		d.Properties["owner"] = owner
	}
	require.NoError(t, tx.Commit(ctx))
}

func amounts(docs []*api.Document) []float64 {
	var res []float64
	for _, d := range docs {
		switch v := d.Properties["amount"].(type) {
		case int:
			res = append(res, float64(v))
		case float64:
			res = append(res, v)
		}
	}
	return res
}

func testDataStore(t *testing.T, cfg Config) {
	ctx := context.Background()
	ds, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer ds.Close(ctx)

	populate(t, ctx, ds)

	tx, err := ds.BeginTransaction(ctx)
	require.NoError(t, err)

	request := api.RequestScope{User: api.User{ID: "u1"}, Attributes: map[string]interface{}{"region": "US"}}
	scope, err := ds.Scope("orders", request)
	require.NoError(t, err)
	scope.Sorting = api.Sorting{{Field: "amount", Order: api.Descending}}

	seq, err := tx.LoadScoped(ctx, scope)
	require.NoError(t, err)
	docs, err := seq.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 10}, amounts(docs))

	scope.Pagination = &api.Pagination{Offset: 1, Limit: 5}
	seq, err = tx.LoadScoped(ctx, scope)
	require.NoError(t, err)
	docs, err = seq.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, amounts(docs))

	// without the region attribute the restriction cannot be resolved and denies
	scope, err = ds.Scope("orders", api.RequestScope{User: api.User{ID: "u1"}})
	require.NoError(t, err)
	seq, err = tx.LoadScoped(ctx, scope)
	require.NoError(t, err)
	docs, err = seq.Collect(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	scope, err = ds.Scope("notes", request)
	require.NoError(t, err)
	seq, err = tx.LoadScoped(ctx, scope)
	require.NoError(t, err)
	docs, err = seq.Collect(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	scope, err = ds.Scope("notes", api.RequestScope{User: api.User{ID: "u9", Name: "admin"}})
	require.NoError(t, err)
	seq, err = tx.LoadScoped(ctx, scope)
	require.NoError(t, err)
	docs, err = seq.Collect(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	scope, err = ds.Scope("notes", api.RequestScope{})
	require.NoError(t, err)
	seq, err = tx.LoadScoped(ctx, scope)
	require.NoError(t, err)
	docs, err = seq.Collect(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	d, err := tx.LoadObject(ctx, "orders", docs0ID(t, ctx, tx))
	require.NoError(t, err)
	require.NotNil(t, d)
	require.NoError(t, tx.Delete(ctx, d))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Close(ctx))

	tx, err = ds.BeginTransaction(ctx)
	require.NoError(t, err)
	seq, err = tx.LoadObjects(ctx, "orders")
	require.NoError(t, err)
	docs, err = seq.Collect(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	missing, err := tx.LoadObject(ctx, "orders", d.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.True(t, IsProtocolViolation(tx.Close(ctx)))
}

func docs0ID(t *testing.T, ctx context.Context, tx *Transaction) string {
	seq, err := tx.LoadObjects(ctx, "orders")
	require.NoError(t, err)
	defer seq.Close(ctx)
	require.True(t, seq.Next(ctx))
	return seq.Document().ID
}

func TestDataStore_Memory(t *testing.T) {
	testDataStore(t, ordersConfig("memory", ""))
}

func TestDataStore_Sqlite(t *testing.T) {
	testDataStore(t, ordersConfig("sqlite3", filepath.Join(t.TempDir(), "gtx.db")))
}

func TestDataStore_Scope(t *testing.T) {
	ds := New(ordersConfig("memory", ""), nil, nil)

	scope, err := ds.Scope("orders", api.RequestScope{})
	require.NoError(t, err)
	assert.Equal(t, "orders", scope.Type)
	assert.Equal(t, ModeAll, scope.Mode)
	require.Len(t, scope.Checks, 2)
	assert.Equal(t, "active", scope.Checks[0].Name())
	_, ok := scope.Checks[0].(api.CriterionCheck)
	assert.True(t, ok)

	_, err = ds.Scope("invoices", api.RequestScope{})
	assert.True(t, IsNotFound(err))

	cfg := ordersConfig("memory", "")
	cfg.Collections[0].Mode = "some"
	_, err = New(cfg, nil, nil).Scope("orders", api.RequestScope{})
	assert.True(t, IsValidation(err))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Storage: StorageConfig{Driver: "oracle"}}, nil)
	assert.True(t, IsValidation(err))
}
