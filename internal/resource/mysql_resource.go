package resource

import (
	"sync"

	"gorm.io/gorm"

	"video-pipeline-service/pkg/assert"
	"video-pipeline-service/pkg/config"
	"video-pipeline-service/pkg/manager"
	"video-pipeline-service/pkg/repository"
)

var (
	mysqlResourceOnce      sync.Once
	singletonMySQLResource *MySQLResource
)

// MySQLResource manages the lifecycle of the shared gorm handle.
type MySQLResource struct {
	db *repository.Database
}

// DefaultMySQLResource returns the global MySQL resource instance.
func DefaultMySQLResource() *MySQLResource {
	assert.NotCircular()
	mysqlResourceOnce.Do(func() {
		singletonMySQLResource = &MySQLResource{}
	})
	assert.NotNil(singletonMySQLResource)
	return singletonMySQLResource
}

// MustOpen establishes the MySQL connection using global configuration.
func (r *MySQLResource) MustOpen() {
	if r.db != nil {
		return
	}

	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before MySQLResource")
	}

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		panic("failed to connect mysql: " + err.Error())
	}
	r.db = db
}

// Close releases the underlying connection pool.
func (r *MySQLResource) Close() {
	if r.db != nil {
		_ = r.db.Close()
	}
}

// DB exposes the gorm handle for persistence layers.
func (r *MySQLResource) DB() *gorm.DB {
	if r.db == nil {
		return nil
	}
	return r.db.Self
}

// MySQLResourcePlugin wires the resource into the manager.
type MySQLResourcePlugin struct{}

func (p *MySQLResourcePlugin) Name() string {
	return "mysql"
}

func (p *MySQLResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultMySQLResource()
}
