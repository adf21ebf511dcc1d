// Package repository selects and opens the storage backend.
package repository

import (
	"context"
	"fmt"

	"github.com/sumire/issuetracker/internal/repository/memory"
	"github.com/sumire/issuetracker/internal/repository/mongodb"
	"github.com/sumire/issuetracker/internal/repository/postgres"
	"github.com/sumire/issuetracker/internal/service"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Lifecycle is implemented by every backend.
type Lifecycle interface {
	// EnsureSchema creates the tables or indexes the backend relies on.
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Backend bundles the repositories of one opened store.
type Backend struct {
	Lifecycle
	Driver   string
	Projects service.ProjectStore
	Issues   service.IssueStore
}

// Options selects and locates the store.
type Options struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string
	Pool          postgres.PoolConfig
}

// Open connects to the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (*Backend, error) {
	switch opts.Driver {
	case DriverMongo:
		s, err := mongodb.Connect(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &Backend{Lifecycle: s, Driver: opts.Driver, Projects: s.Projects(), Issues: s.Issues()}, nil
	case DriverPostgres:
		s, err := postgres.Connect(ctx, opts.DatabaseURL, opts.Pool)
		if err != nil {
			return nil, err
		}
		return &Backend{Lifecycle: s, Driver: opts.Driver, Projects: s.Projects(), Issues: s.Issues()}, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// NewMemory returns a fresh in-memory backend.
func NewMemory() *Backend {
	s := memory.New()
	return &Backend{Lifecycle: s, Driver: DriverMemory, Projects: s.Projects(), Issues: s.Issues()}
}
