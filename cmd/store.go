package cmd

import (
	"context"
	"fmt"

	"github.com/diantamela/satgas-ppk/config"
	"github.com/diantamela/satgas-ppk/databases"
	"github.com/diantamela/satgas-ppk/repository"
	"github.com/diantamela/satgas-ppk/sqlstore"
)

// backend is an opened store plus the driver specific hooks
type backend struct {
	repository.Store
	ping    func(ctx context.Context) error
	migrate func(ctx context.Context) error
}

func openStore(conf *config.Config) (*backend, error) {
	switch conf.Driver {
	case config.DriverSQLite:
		s, err := sqlstore.Open(conf.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &backend{Store: s, ping: s.Ping, migrate: s.Migrate}, nil
	case config.DriverMongo:
		client, err := databases.NewClient(conf)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		s := databases.NewStore(databases.NewDatabase(conf, client))
		return &backend{Store: s, ping: s.Ping, migrate: s.EnsureIndexes}, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", conf.Driver)
	}
}
