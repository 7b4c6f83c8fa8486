// Package sqlstore stores task records in a SQLite table through GORM.
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-server/domain/task"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// row is the table layout. Optional attributes are nullable columns so that
// an unsupplied attribute stays absent rather than zero.
type row struct {
	ID             string    `gorm:"primaryKey;size:36"`
	CreatedAt      time.Time `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime:false"`
	Task           string    `gorm:"not null"`
	Status         string    `gorm:"not null;index"`
	TimeToComplete *int
	Deadline       *string
	Solutions      *string // JSON array
}

// Store provides task storage on a single SQL table.
type Store struct {
	db    *gorm.DB
	table string
}

var (
	_ domain.Store  = (*Store)(nil)
	_ domain.Pinger = (*Store)(nil)
)

// Open opens the SQLite database at path and migrates the task table.
func Open(path, table string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	// SQLite serializes writers; one connection also keeps :memory: databases shared.
	sqlDB.SetMaxOpenConns(1)

	return New(db, table)
}

// New uses an open GORM handle and migrates the task table.
func New(db *gorm.DB, table string) (*Store, error) {
	if err := db.Table(table).AutoMigrate(&row{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", table, err)
	}
	return &Store{db: db, table: table}, nil
}

func (s *Store) tx(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table)
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Task, error) {
	var r row
	if err := s.tx(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(id)
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return r.toDomain()
}

// Put inserts t or replaces every column of an existing row with the same id.
func (s *Store) Put(ctx context.Context, t *domain.Task) error {
	r, err := fromDomain(t)
	if err != nil {
		return err
	}
	if err := s.tx(ctx).Save(r).Error; err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// Update issues one UPDATE restricted to the id; zero affected rows means the
// task does not exist and nothing was written.
func (s *Store) Update(ctx context.Context, id string, p domain.Patch, at time.Time) (*domain.Task, error) {
	columns, err := patchColumns(p, at)
	if err != nil {
		return nil, err
	}

	var updated *domain.Task
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Table(s.table).Where("id = ?", id).Updates(columns)
		if err := result.Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if result.RowsAffected == 0 {
			return domain.NotFound(id)
		}

		var r row
		if err := tx.Table(s.table).First(&r, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to reload task: %w", err)
		}
		updated, err = r.toDomain()
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.tx(ctx).Where("id = ?", id).Delete(&row{}).Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Scan returns matching rows in creation order, capped at q.Limit.
func (s *Store) Scan(ctx context.Context, q domain.Query) ([]domain.Task, error) {
	query := s.tx(ctx).Order("created_at, id").Limit(q.Limit)
	if status, ok := q.Status.Get(); ok {
		query = query.Where("status = ?", string(status))
	}

	var rows []row
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func patchColumns(p domain.Patch, at time.Time) (map[string]any, error) {
	columns := map[string]any{"updated_at": at}
	if v, ok := p.Task.Get(); ok {
		columns["task"] = v
	}
	if v, ok := p.Status.Get(); ok {
		columns["status"] = string(v)
	}
	if v, ok := p.TimeToComplete.Get(); ok {
		columns["time_to_complete"] = v
	}
	if v, ok := p.Deadline.Get(); ok {
		columns["deadline"] = v
	}
	if p.Solutions.IsSet() {
		encoded, err := encodeSolutions(p.Solutions)
		if err != nil {
			return nil, err
		}
		columns["solutions"] = *encoded
	}
	return columns, nil
}

func fromDomain(t *domain.Task) (*row, error) {
	solutions, err := encodeSolutions(t.Solutions)
	if err != nil {
		return nil, err
	}
	return &row{
		ID:             t.ID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Task:           t.Task,
		Status:         string(t.Status),
		TimeToComplete: t.TimeToComplete.Ptr(),
		Deadline:       t.Deadline.Ptr(),
		Solutions:      solutions,
	}, nil
}

func (r row) toDomain() (*domain.Task, error) {
	t := &domain.Task{
		ID:             r.ID,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
		Task:           r.Task,
		Status:         domain.Status(r.Status),
		TimeToComplete: domain.FromPtr(r.TimeToComplete),
		Deadline:       domain.FromPtr(r.Deadline),
	}
	if r.Solutions != nil {
		var solutions []string
		if err := json.Unmarshal([]byte(*r.Solutions), &solutions); err != nil {
			return nil, fmt.Errorf("failed to decode solutions: %w", err)
		}
		if solutions == nil {
			solutions = []string{}
		}
		t.Solutions = domain.Some(solutions)
	}
	return t, nil
}

func encodeSolutions(o domain.Optional[[]string]) (*string, error) {
	v, ok := o.Get()
	if !ok {
		return nil, nil
	}
	if v == nil {
		v = []string{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode solutions: %w", err)
	}
	s := string(data)
	return &s, nil
}
