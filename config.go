package gtx

import (
	"github.com/jinzhu/configor"
	"github.com/pkg/errors"

	"github.com/xdbsoft/gtx/rules"
)

// CollectionDefinition describes the structure and the authorization for a collection.
// Name may contain '{var}' segments, matching any value.
type CollectionDefinition struct {
	Name     string
	Sortable []string
	//Mode is how the rules are combined: "any" (default) or "all"
	Mode  string
	Rules []rules.Rule
}

// StorageConfig selects and configures the storage adapter
type StorageConfig struct {
	//Driver is one of memory, sqlite3, postgres or mongo
	Driver     string `default:"memory"`
	DSN        string
	Database   string `default:"gtx"`
	Collection string `default:"documents"`
}

// Config contains all required information for the initialisation of a data store
type Config struct {
	Environment   string `default:"dev"`
	Storage       StorageConfig
	StrictSorting bool
	Collections   []CollectionDefinition
}

// LoadConfig reads the given files, environment variables prefixed by GTX
// overriding their values
func LoadConfig(files ...string) (Config, error) {
	var cfg Config
	if err := configor.New(&configor.Config{ENVPrefix: "GTX"}).Load(&cfg, files...); err != nil {
		return cfg, errors.Wrap(err, "unable to load configuration")
	}
	return cfg, nil
}
