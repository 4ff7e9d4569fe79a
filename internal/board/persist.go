package board

import (
	"log"

	"github.com/example/planboard/internal/drawing"
)

type jobKind int

const (
	jobCreate jobKind = iota
	jobUpdate
	jobDelete
)

// job is one queued store call. Ids may be temporary; they are resolved when
// the job runs so mutations issued before a create is confirmed reach the
// confirmed draw.
type job struct {
	kind    jobKind
	floorID string
	draw    drawing.Draw
	id      string
	patch   drawing.Patch
	ids     []string
}

func (b *Board) enqueue(j job) {
	b.pending.Add(1)
	b.qmu.Lock()
	b.queue = append(b.queue, j)
	b.qmu.Unlock()
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

func (b *Board) next() (job, bool) {
	b.qmu.Lock()
	defer b.qmu.Unlock()
	if len(b.queue) == 0 {
		return job{}, false
	}
	j := b.queue[0]
	b.queue = b.queue[1:]
	return j, true
}

// Flush blocks until every queued store call has run.
func (b *Board) Flush() {
	b.pending.Wait()
}

func (b *Board) worker() {
	defer close(b.stopped)
	for {
		select {
		case <-b.done:
			return
		case <-b.signal:
		}
		for {
			j, ok := b.next()
			if !ok {
				break
			}
			b.run(j)
			b.pending.Done()
		}
	}
}

func (b *Board) run(j job) {
	switch j.kind {
	case jobCreate:
		b.runCreate(j)
	case jobUpdate:
		b.runUpdate(j)
	case jobDelete:
		b.runDelete(j)
	}
}

func (b *Board) runCreate(j job) {
	d := j.draw.Clone()
	b.mu.Lock()
	id := b.resolve(d.ID)
	b.mu.Unlock()
	tempID := ""
	if isTemp(id) {
		tempID = id
		d.ID = ""
	} else {
		d.ID = id
	}
	created, err := b.store.CreateDraws(b.ctx, j.floorID, []drawing.Draw{d})
	if err != nil {
		log.Printf("create draws: %v", err)
		return
	}
	if len(created) == 0 {
		return
	}
	confirmed := created[0]
	if tempID != "" {
		b.mu.Lock()
		b.confirm(tempID, confirmed.ID)
		b.mu.Unlock()
	}
	if b.transport != nil {
		b.transport.EmitCreated(confirmed)
	}
	b.changed()
}

// confirm swaps a temporary id for the store's id everywhere it is held.
func (b *Board) confirm(tempID, id string) {
	b.ids[tempID] = id
	for i := range b.draws {
		if b.draws[i].ID == tempID {
			b.draws[i].ID = id
		}
	}
	b.history.Rename(tempID, id)
	if b.sel.SelectedID == tempID {
		b.sel.SelectedID = id
	}
}

func (b *Board) runUpdate(j job) {
	b.mu.Lock()
	id := b.resolve(j.id)
	b.mu.Unlock()
	if isTemp(id) {
		log.Printf("update draw: %s was never stored", id)
		return
	}
	if _, err := b.store.UpdateDraw(b.ctx, id, j.patch); err != nil {
		log.Printf("update draw: %v", err)
		return
	}
	if b.transport != nil {
		b.transport.EmitUpdated(id, j.patch)
	}
}

func (b *Board) runDelete(j job) {
	b.mu.Lock()
	ids := make([]string, 0, len(j.ids))
	for _, id := range j.ids {
		if id = b.resolve(id); !isTemp(id) {
			ids = append(ids, id)
		}
	}
	b.mu.Unlock()
	if len(ids) == 0 {
		return
	}
	if err := b.store.DeleteDraws(b.ctx, ids); err != nil {
		log.Printf("delete draws: %v", err)
		return
	}
	if b.transport != nil {
		b.transport.EmitDeleted(ids)
	}
}
