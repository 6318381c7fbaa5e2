package migration

import (
	"github.com/PayRam/go-dbclient/models"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

var Initialise = &gormigrate.Migration{
	ID: "202610191200-dbc-510377",
	Migrate: func(db *gorm.DB) error {
		return db.AutoMigrate(models.All()...)
	},
	Rollback: func(db *gorm.DB) error {
		return db.Migrator().DropTable(models.All()...)
	},
}

// All lists migrations in the order they must run
func All() []*gormigrate.Migration {
	return []*gormigrate.Migration{Initialise}
}
