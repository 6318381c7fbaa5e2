package go_dbclient

import (
	"context"
	"fmt"

	"github.com/PayRam/go-dbclient/config"
	db2 "github.com/PayRam/go-dbclient/internal/db"
	"github.com/PayRam/go-dbclient/internal/logging"
	"github.com/PayRam/go-dbclient/internal/serviceimpl"
	"github.com/PayRam/go-dbclient/models"
	"github.com/PayRam/go-dbclient/response"
	"github.com/PayRam/go-dbclient/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DataService groups the repositories of the back-office schema. Inside Transaction
// every repository is bound to the transaction.
type DataService struct {
	Users          service.Repository[models.User]
	Clients        service.Repository[models.Client]
	Projects       service.Repository[models.Project]
	Tasks          service.Repository[models.Task]
	CalendarEvents service.Repository[models.CalendarEvent]

	client *serviceimpl.Client
	logger *zap.Logger
}

// NewDataService migrates db and wires the repositories. The caller keeps ownership
// of the pool.
func NewDataService(db *gorm.DB, logger *zap.Logger) (*DataService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db2.Migrate(db, logger); err != nil {
		return nil, err
	}
	return newDataService(serviceimpl.NewClient(db, logger), logger)
}

// Open builds the logger and the pool from cfg. Close releases both.
func Open(cfg config.Config) (*DataService, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := db2.InitDB(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	s, err := newDataService(serviceimpl.NewClient(db, logger), logger)
	if err != nil {
		_ = db2.Shutdown(db)
		return nil, err
	}
	return s, nil
}

func newDataService(client *serviceimpl.Client, logger *zap.Logger) (*DataService, error) {
	s := &DataService{client: client, logger: logger}

	var err error
	if s.Users, err = serviceimpl.NewRepository[models.User](client); err != nil {
		return nil, err
	}
	if s.Clients, err = serviceimpl.NewRepository[models.Client](client); err != nil {
		return nil, err
	}
	if s.Projects, err = serviceimpl.NewRepository[models.Project](client); err != nil {
		return nil, err
	}
	if s.Tasks, err = serviceimpl.NewRepository[models.Task](client); err != nil {
		return nil, err
	}
	if s.CalendarEvents, err = serviceimpl.NewRepository[models.CalendarEvent](client); err != nil {
		return nil, err
	}

	return s, nil
}

// Tables describes every registered table
func (s *DataService) Tables() []service.TableInfo {
	return []service.TableInfo{
		s.Users.Table(),
		s.Clients.Table(),
		s.Projects.Table(),
		s.Tasks.Table(),
		s.CalendarEvents.Table(),
	}
}

func (s *DataService) HealthCheck(ctx context.Context) error {
	return db2.HealthCheck(ctx, s.client.DB)
}

// Close shuts the pool down. It must not be called on the service handed to a
// Transaction callback.
func (s *DataService) Close() error {
	_ = s.logger.Sync()
	if err := db2.Shutdown(s.client.DB); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// NewRepository exposes the generic repository for models outside the back-office
// schema. Their tables must already exist.
func NewRepository[T any](s *DataService) (service.Repository[T], error) {
	repo, err := serviceimpl.NewRepository[T](s.client)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Raw runs a hand written statement, see serviceimpl.CheckQuery for what is refused
func Raw[T any](ctx context.Context, s *DataService, query string, params ...interface{}) response.Result[[]T] {
	return serviceimpl.Raw[T](ctx, s.client, query, params...)
}

// Transaction runs fn with a DataService bound to one transaction
func Transaction[T any](ctx context.Context, s *DataService, fn func(tx *DataService) (T, error)) response.Result[T] {
	return serviceimpl.Transaction(ctx, s.client, func(tx *serviceimpl.Client) (T, error) {
		txService, err := newDataService(tx, s.logger)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(txService)
	})
}
