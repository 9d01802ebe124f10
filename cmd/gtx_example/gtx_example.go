package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/xdbsoft/gtx"
	"github.com/xdbsoft/gtx/api"
	"github.com/xdbsoft/gtx/filter"
	"github.com/xdbsoft/gtx/logger"
)

var configPath = flag.String("config", "gtx_example.toml", "path to the configuration file")
var userID = flag.String("user", "u1", "identifier of the user reading the orders")
var region = flag.String("region", "US", "region attribute of the request")
var sorting = flag.String("sort", "-amount", "sort order of the read, e.g. -amount,id")

func seed(ctx context.Context, ds *gtx.DataStore) error {
	tx, err := ds.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer tx.Close(ctx)

	orders := []map[string]interface{}{
		{"status": "active", "region": "US", "owner": "u1", "amount": 120},
		{"status": "active", "region": "EU", "owner": "u1", "amount": 80},
		{"status": "closed", "region": "US", "owner": "u2", "amount": 45},
		{"status": "active", "region": "US", "owner": "u2", "amount": 300},
	}
	for _, props := range orders {
		d, err := tx.CreateObject(ctx, "orders")
		if err != nil {
			return err
		}
		d.Properties = props
	}
	return tx.Commit(ctx)
}

func read(ctx context.Context, ds *gtx.DataStore, log logger.Logger) error {
	tx, err := ds.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer tx.Close(ctx)

	scope, err := ds.Scope("orders", api.RequestScope{
		User:       api.User{ID: *userID},
		Attributes: map[string]interface{}{"region": *region},
	})
	if err != nil {
		return err
	}
	if scope.Sorting, err = api.ParseSorting(*sorting); err != nil {
		return err
	}
	scope.Predicates = []filter.Predicate{
		{Type: "orders", Field: "amount", Operator: filter.GE, Values: []interface{}{50}},
	}
	scope.Pagination = &api.Pagination{Offset: 0, Limit: 10}

	seq, err := tx.LoadScoped(ctx, scope)
	if err != nil {
		return err
	}
	for d, err := range seq.All(ctx) {
		if err != nil {
			return err
		}
		fmt.Printf("%s %v\n", d.ID, d.Properties)
	}

	log.Infof("read done for user %s", *userID)
	return tx.Commit(ctx)
}

func main() {

	flag.Parse()

	cfg, err := gtx.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ds, err := gtx.Open(ctx, cfg, log)
	if err != nil {
		panic(err)
	}
	defer ds.Close(ctx)

	if err := seed(ctx, ds); err != nil {
		log.Error(err)
		return
	}
	if err := read(ctx, ds, log); err != nil {
		log.Error(err)
	}
}
