// Package postgres is an illustrative module built on pkg/pod: it
// provisions a single-container PostgreSQL pod, seeds it with init SQL via
// storage.FileMaterial, and verifies connectivity with pgx once the
// orchestrator reports the pod ready.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/testpods-go/testpods/pkg/pod"
	"github.com/testpods-go/testpods/pkg/storage"
	"github.com/testpods-go/testpods/pkg/svc"
	"github.com/testpods-go/testpods/pkg/wait"
)

const (
	defaultImage    = "postgres:16-alpine"
	containerPort   = 5432
	defaultDatabase = "test"
	defaultUser     = "test"
	defaultPassword = "test"
)

// Module wraps a provisioned PostgreSQL test pod plus the connection
// parameters needed to build a DSN against it.
type Module struct {
	pod      *pod.Pod
	database string
	user     string
	password string
}

// Option configures a Module at construction time.
type Option func(*config)

type config struct {
	image    string
	database string
	user     string
	password string
	initSQL  []storage.File
	builder  func(*pod.Builder)
}

// WithImage overrides the default postgres image.
func WithImage(image string) Option {
	return func(c *config) { c.image = image }
}

// WithCredentials overrides the default database/user/password.
func WithCredentials(database, user, password string) Option {
	return func(c *config) { c.database, c.user, c.password = database, user, password }
}

// WithInitScript attaches a SQL file the container runs on first boot
// (postgres's docker-entrypoint-initdb.d convention), rendered via a
// storage.FileMaterial rather than a bespoke ConfigMap path.
func WithInitScript(filename string, contents []byte) Option {
	return func(c *config) {
		c.initSQL = append(c.initSQL, storage.File{Path: filename, Contents: contents})
	}
}

// WithBuilder applies an arbitrary customization to the underlying
// pod.Builder before Build, for callers that need to reach deeper (e.g.
// WithPodTemplateCustomizer, WithDeadline).
func WithBuilder(fn func(*pod.Builder)) Option {
	return func(c *config) { c.builder = fn }
}

// New builds (but does not start) a PostgreSQL test pod named name.
func New(name string, opts ...Option) (*Module, error) {
	c := &config{
		image:    defaultImage,
		database: defaultDatabase,
		user:     defaultUser,
		password: defaultPassword,
	}
	for _, opt := range opts {
		opt(c)
	}

	builder := pod.New(name).
		WithImage(c.image).
		WithPort(containerPort).
		WithEnv("POSTGRES_DB", c.database).
		WithEnv("POSTGRES_USER", c.user).
		WithEnv("POSTGRES_PASSWORD", c.password).
		WithStatelessWorkload(1).
		WithService(svc.NewNodePort(0)).
		WithWaitStrategy(wait.ForTCP(fmt.Sprintf("%s:%d", name, containerPort)))

	if len(c.initSQL) > 0 {
		builder = builder.WithFileMaterial(storage.NewFileMaterial(
			"initdb-scripts", "/docker-entrypoint-initdb.d", c.initSQL...,
		))
	}
	if c.builder != nil {
		c.builder(builder)
	}

	p, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Module{pod: p, database: c.database, user: c.user, password: c.password}, nil
}

// Start provisions the pod and blocks until PostgreSQL accepts TCP
// connections.
func (m *Module) Start(ctx context.Context) error { return m.pod.Start(ctx) }

// Stop tears down the pod.
func (m *Module) Stop(ctx context.Context) error { return m.pod.Stop(ctx) }

// ConnString builds a pgx-compatible DSN against the pod's external
// endpoint. Only valid once Start has returned successfully.
func (m *Module) ConnString() (string, error) {
	host, err := m.pod.GetExternalHost()
	if err != nil {
		return "", err
	}
	port, err := m.pod.GetExternalPort()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", m.user, m.password, host, port, m.database), nil
}

// Connect opens a single pgx connection against the running pod, useful
// for a test's setup/teardown without standing up a pool.
func (m *Module) Connect(ctx context.Context) (*pgx.Conn, error) {
	dsn, err := m.ConnString()
	if err != nil {
		return nil, err
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return conn, nil
}

// VerifySchema runs a cheap existence check against a database/sql
// connection, used to confirm an init script's tables landed before a test
// proceeds. Kept independent of pgx.Conn so it can be driven against a
// sqlmock-backed *sql.DB in tests without a live cluster.
func VerifySchema(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: verify schema for %s: %w", table, err)
	}
	return exists, nil
}
