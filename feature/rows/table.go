package rows

import (
	"context"
	"fmt"
	"sync"

	"livelist/core/database"
	"livelist/core/list"
	"livelist/core/stream"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TableName is the table holding every persisted list.
const TableName = "list_rows"

// Row is one element of a persisted list.
type Row struct {
	ID       uint   `gorm:"primaryKey"`
	List     string `gorm:"column:list;size:191;not null;index:idx_list_position,priority:1"`
	Position int    `gorm:"column:position;not null;index:idx_list_position,priority:2"`
	Key      string `gorm:"column:key;size:1024;not null"`
}

// TableName implements gorm's tabler.
func (Row) TableName() string {
	return TableName
}

// Migrate creates or updates the list_rows table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Row{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", TableName, err)
	}
	return nil
}

// Table is one persisted list, observable as a list of keys.
type Table struct {
	db     *gorm.DB
	name   string
	logger *zap.Logger

	// mu keeps the committed rows and the published list in step.
	mu    sync.Mutex
	items *stream.List[string]
}

// NewTable creates an empty Table for the list called name. Call Load to
// read the stored rows.
func NewTable(db *gorm.DB, name string, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Table{
		db:     db,
		name:   name,
		logger: logger.With(zap.String("list", name)),
		items:  stream.NewList[string](),
	}
}

// Name returns the list name.
func (t *Table) Name() string {
	return t.name
}

// Subscribe implements stream.Observable.
func (t *Table) Subscribe(fn func(list.Update[string])) stream.Subscription {
	return t.items.Subscribe(fn)
}

// Snapshot returns the keys as last published.
func (t *Table) Snapshot() []string {
	return t.items.Snapshot()
}

// Check returns the required columns missing from list_rows.
func (t *Table) Check() ([]string, error) {
	return database.MissingColumns(t.db, TableName, "list", "position", "key")
}

// Load reads the stored rows and publishes them as a Reloaded.
func (t *Table) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var rows []Row
	if err := t.db.WithContext(ctx).Where("list = ?", t.name).Order("position").Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to load list %s: %w", t.name, err)
	}
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	t.items.Replace(keys...)
	t.logger.Debug("List loaded", zap.Int("rows", len(rows)))
	return nil
}

// Insert stores key at position and publishes Inserted(position).
func (t *Table) Insert(ctx context.Context, position int, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := t.items.Len(); position < 0 || position > n {
		return fmt.Errorf("%w: insert at %d into %d rows", list.ErrOutOfRange, position, n)
	}

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Row{}).
			Where("list = ? AND position >= ?", t.name, position).
			Update("position", gorm.Expr("position + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Create(&Row{List: t.name, Position: position, Key: key}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert into list %s: %w", t.name, err)
	}
	return t.items.Insert(position, key)
}

// Remove deletes the row at position and publishes Removed(position).
func (t *Table) Remove(ctx context.Context, position int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := t.items.Len(); position < 0 || position >= n {
		return fmt.Errorf("%w: remove %d from %d rows", list.ErrOutOfRange, position, n)
	}

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list = ? AND position = ?", t.name, position).Delete(&Row{}).Error; err != nil {
			return err
		}
		return tx.Model(&Row{}).
			Where("list = ? AND position > ?", t.name, position).
			Update("position", gorm.Expr("position - ?", 1)).Error
	})
	if err != nil {
		return fmt.Errorf("failed to remove from list %s: %w", t.name, err)
	}
	return t.items.Remove(position)
}
