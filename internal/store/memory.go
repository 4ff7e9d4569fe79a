package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/segmentio/ksuid"

	"github.com/example/planboard/internal/drawing"
)

// Memory keeps everything in process. It backs sandbox sessions and tests.
type Memory struct {
	mu     sync.RWMutex
	floors map[string]Floor
	draws  map[string][]drawing.Draw
	index  map[string]string // draw id -> floor id
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		floors: map[string]Floor{},
		draws:  map[string][]drawing.Draw{},
		index:  map[string]string{},
	}
}

func (m *Memory) CreateDraws(ctx context.Context, floorID string, draws []drawing.Draw) ([]drawing.Draw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]drawing.Draw, 0, len(draws))
	for _, d := range draws {
		if d.Shape == nil {
			return nil, fmt.Errorf("create draw: %w", drawing.ErrUnknownType)
		}
		d = d.Clone()
		d.FloorID = floorID
		d.Deleted = false
		if d.ID != "" {
			if fid, ok := m.index[d.ID]; ok {
				list := m.draws[fid]
				for i := range list {
					if list[i].ID == d.ID {
						list[i] = d
					}
				}
				out = append(out, d.Clone())
				continue
			}
		} else {
			d.ID = ksuid.New().String()
		}
		m.draws[floorID] = append(m.draws[floorID], d)
		m.index[d.ID] = floorID
		out = append(out, d.Clone())
	}
	return out, nil
}

func (m *Memory) UpdateDraw(ctx context.Context, id string, p drawing.Patch) (drawing.Draw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fid, ok := m.index[id]
	if !ok {
		return drawing.Draw{}, fmt.Errorf("update draw %s: %w", id, ErrNotFound)
	}
	list := m.draws[fid]
	for i := range list {
		if list[i].ID == id && !list[i].Deleted {
			list[i] = p.Apply(list[i])
			return list[i].Clone(), nil
		}
	}
	return drawing.Draw{}, fmt.Errorf("update draw %s: %w", id, ErrNotFound)
}

func (m *Memory) DeleteDraws(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		fid, ok := m.index[id]
		if !ok {
			continue
		}
		list := m.draws[fid]
		for i := range list {
			if list[i].ID == id {
				list[i].Deleted = true
			}
		}
	}
	return nil
}

func (m *Memory) ListDraws(ctx context.Context, floorID string) ([]drawing.Draw, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []drawing.Draw
	for _, d := range m.draws[floorID] {
		if !d.Deleted {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

func (m *Memory) ListFloors(ctx context.Context) ([]Floor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Floor, 0, len(m.floors))
	for _, f := range m.floors {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) PutFloor(ctx context.Context, f Floor) error {
	if f.ID == "" {
		return fmt.Errorf("put floor: empty id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.floors[f.ID] = f
	return nil
}
