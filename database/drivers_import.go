package database

// Import all drivers to register them
import (
	_ "github.com/rediwo/refdata/drivers/mysql"
	_ "github.com/rediwo/refdata/drivers/postgresql"
	_ "github.com/rediwo/refdata/drivers/sqlite"
)
