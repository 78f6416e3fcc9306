package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"livelist/core/cache"
	"livelist/core/concat"
	"livelist/core/list"
	"livelist/core/storage"
	"livelist/core/stream"
	"livelist/core/view"
	"livelist/feature/objects"
	"livelist/feature/rows"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrChildNotFound       = errors.New("child not found")
	ErrStorageUnavailable  = errors.New("object storage is not configured")
	ErrDatabaseUnavailable = errors.New("database is not configured")
)

// Child kinds.
const (
	KindStatic = "static"
	KindPrefix = "prefix"
	KindTable  = "table"
)

// Child describes one member list of the catalog.
type Child struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Source string `json:"source,omitempty"`
	Size   int    `json:"size"`
}

type member struct {
	id     string
	kind   string
	source string

	static *stream.List[string]
	prefix *objects.PrefixList
	table  *rows.Table
}

func (m *member) observable() stream.Observable[string] {
	switch m.kind {
	case KindPrefix:
		return m.prefix
	case KindTable:
		return m.table
	default:
		return m.static
	}
}

func (m *member) child() Child {
	c := Child{ID: m.id, Kind: m.kind, Source: m.source}
	switch m.kind {
	case KindPrefix:
		c.Size = m.prefix.Len()
	case KindTable:
		c.Size = len(m.table.Snapshot())
	default:
		c.Size = m.static.Len()
	}
	return c
}

// Service maintains the catalog: a composite of member lists with a
// materialized, cached view of its elements.
type Service struct {
	cfg    Config
	client storage.Client
	bucket string
	db     *gorm.DB
	logger *zap.Logger

	// mu serializes structural edits and keeps members aligned with root.
	mu      sync.Mutex
	members []*member
	root    *stream.List[stream.Observable[string]]

	composite *concat.Concat[string]
	view      *view.View[string]
	entries   *view.Materialized[string, objects.Entry]
}

// NewService creates an empty catalog. client and db are optional; without
// them prefix and table children are unavailable.
func NewService(cfg Config, client storage.Client, bucket string, db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	root := stream.NewList[stream.Observable[string]]()
	composite := concat.New[string](root,
		concat.WithLogger(logger.Named("concat")),
		concat.WithValidation(cfg.Validate),
	)
	v := view.New[string](composite, logger.Named("view"))

	resolve := objects.KeyEntry
	if client != nil {
		resolve = objects.NewStatResolver(client, bucket, cfg.StatTimeout()).Resolve
	}

	return &Service{
		cfg:       cfg,
		client:    client,
		bucket:    bucket,
		db:        db,
		logger:    logger,
		root:      root,
		composite: composite,
		view:      v,
		entries:   view.Materialize(v, resolve),
	}
}

// Bootstrap attaches the prefixes and tables named in the configuration.
func (s *Service) Bootstrap(ctx context.Context) error {
	for _, prefix := range s.cfg.PrefixList() {
		if _, err := s.AddPrefixChild(ctx, s.root.Len(), prefix); err != nil {
			return err
		}
	}
	for _, name := range s.cfg.TableList() {
		if _, err := s.AddTableChild(ctx, s.root.Len(), name); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the composite and its generation.
func (s *Service) Snapshot() ([]string, uint64) {
	return s.view.Snapshot()
}

// Children lists the member lists in order.
func (s *Service) Children() []Child {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Child, len(s.members))
	for i, m := range s.members {
		out[i] = m.child()
	}
	return out
}

// AddChild attaches an in-memory list holding items at position pos.
func (s *Service) AddChild(pos int, items []string) (Child, error) {
	return s.insert(pos, &member{
		id:     uuid.NewString(),
		kind:   KindStatic,
		static: stream.NewList(items...),
	})
}

// AddPrefixChild attaches the keys stored under prefix at position pos.
func (s *Service) AddPrefixChild(ctx context.Context, pos int, prefix string) (Child, error) {
	if s.client == nil {
		return Child{}, ErrStorageUnavailable
	}
	p := objects.NewPrefixList(s.client, s.bucket, prefix, s.logger)
	if err := p.Refresh(ctx); err != nil {
		return Child{}, err
	}
	return s.insert(pos, &member{
		id:     uuid.NewString(),
		kind:   KindPrefix,
		source: prefix,
		prefix: p,
	})
}

// AddTableChild attaches the persisted list called name at position pos.
func (s *Service) AddTableChild(ctx context.Context, pos int, name string) (Child, error) {
	if s.db == nil {
		return Child{}, ErrDatabaseUnavailable
	}
	t := rows.NewTable(s.db, name, s.logger)
	if err := t.Load(ctx); err != nil {
		return Child{}, err
	}
	return s.insert(pos, &member{
		id:     uuid.NewString(),
		kind:   KindTable,
		source: name,
		table:  t,
	})
}

func (s *Service) insert(pos int, m *member) (Child, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.root.Insert(pos, m.observable()); err != nil {
		return Child{}, err
	}
	s.members = slices.Insert(s.members, pos, m)
	s.logger.Info("Child attached", zap.String("id", m.id), zap.String("kind", m.kind), zap.Int("position", pos))
	return m.child(), nil
}

// RemoveChild detaches the child at pos.
func (s *Service) RemoveChild(pos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.root.Remove(pos); err != nil {
		return err
	}
	id := s.members[pos].id
	s.members = slices.Delete(s.members, pos, pos+1)
	s.logger.Info("Child detached", zap.String("id", id), zap.Int("position", pos))
	return nil
}

// MoveChild moves the child at from to position to.
func (s *Service) MoveChild(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.root.Move(from, to); err != nil {
		return err
	}
	m := s.members[from]
	s.members = slices.Delete(s.members, from, from+1)
	s.members = slices.Insert(s.members, to, m)
	return nil
}

// ReloadChildren replaces every child with in-memory lists.
func (s *Service) ReloadChildren(children [][]string) []Child {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make([]*member, len(children))
	sources := make([]stream.Observable[string], len(children))
	out := make([]Child, len(children))
	for i, items := range children {
		members[i] = &member{id: uuid.NewString(), kind: KindStatic, static: stream.NewList(items...)}
		sources[i] = members[i].static
		out[i] = members[i].child()
	}
	s.root.Replace(sources...)
	s.members = members
	s.logger.Info("Children reloaded", zap.Int("children", len(children)))
	return out
}

func (s *Service) lookup(id string) (*member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.id == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrChildNotFound, id)
}

// InsertItem adds key to the child id at position pos. Prefix children keep
// their keys sorted and ignore pos.
func (s *Service) InsertItem(ctx context.Context, id string, pos int, key string) error {
	m, err := s.lookup(id)
	if err != nil {
		return err
	}
	switch m.kind {
	case KindPrefix:
		return m.prefix.Put(ctx, key)
	case KindTable:
		return m.table.Insert(ctx, pos, key)
	default:
		return m.static.Insert(pos, key)
	}
}

// RemoveItem removes the element at pos from the child id.
func (s *Service) RemoveItem(ctx context.Context, id string, pos int) error {
	m, err := s.lookup(id)
	if err != nil {
		return err
	}
	switch m.kind {
	case KindPrefix:
		return m.prefix.Remove(ctx, pos)
	case KindTable:
		return m.table.Remove(ctx, pos)
	default:
		return m.static.Remove(pos)
	}
}

// Entry materializes the composite element at index. Results are cached
// until the composite changes.
func (s *Service) Entry(index int) (objects.Entry, error) {
	return s.entries.At(index)
}

// Stats returns the entry cache counters of the current generation.
func (s *Service) Stats() cache.Stats {
	return s.entries.Stats()
}

// Refresh relists every prefix child and reloads every table child.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	members := slices.Clone(s.members)
	s.mu.Unlock()

	var errs []error
	for _, m := range members {
		switch m.kind {
		case KindPrefix:
			errs = append(errs, m.prefix.Refresh(ctx))
		case KindTable:
			errs = append(errs, m.table.Load(ctx))
		}
	}
	return errors.Join(errs...)
}

// Run logs composite changes and periodically releases cached entries until
// ctx is done.
func (s *Service) Run(ctx context.Context) error {
	sub := stream.Coalesce[string](ctx, s.composite, func(u list.Update[string]) {
		s.logger.Debug("Catalog changed",
			zap.Int("size", len(u.List)),
			zap.Int("changes", len(u.Changes)),
			zap.Bool("reload", u.IsReload()),
		)
	})
	defer sub.Unsubscribe()

	var tick <-chan time.Time
	if interval := s.cfg.ReleaseInterval(); interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			if n := s.entries.Release(); n > 0 {
				s.logger.Debug("Released cached entries", zap.Int("entries", n))
			}
		}
	}
}

// Close detaches the catalog view from the composite.
func (s *Service) Close() {
	s.view.Close()
}
