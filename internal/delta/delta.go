// Package delta partitions two identity-keyed entity collections into
// added, removed and changed sets. It is applied per run to root-level
// categories, to products and to cleaned hierarchical category trees.
package delta

import (
	"go.uber.org/zap"

	"github.com/liorgins/rimon-api/internal/catalog"
)

// Partition is the result of diffing an old and a new collection.
// The three sets are disjoint by identifier; unchanged entities are
// not emitted. Slices are never nil so empty partitions serialize as [].
type Partition struct {
	Added   []*catalog.Object `json:"added"`
	Removed []*catalog.Object `json:"removed"`
	Changed []*catalog.Object `json:"changed"`
}

// Engine computes delta partitions. The logger is used to flag entities
// whose identifier is missing; those coerce to the empty-string key and can
// silently collide, which matches the historical behavior.
type Engine struct {
	log *zap.SugaredLogger
}

// NewEngine returns an Engine logging through log. A nil logger disables
// the missing-identifier warnings.
func NewEngine(log *zap.SugaredLogger) *Engine {
	return &Engine{log: log}
}

// Diff partitions prev and curr by the string-coerced "id" field.
//
// Within one side, a duplicated identifier keeps the first-seen position but
// the last occurrence wins. Emission order follows first-seen identifier
// order of the current collection (previous collection for Removed).
// Changed entities are those present on both sides whose full value differs
// by deep structural equality, nested fields included.
func (e *Engine) Diff(prev, curr []*catalog.Object) Partition {
	prevIdx := e.indexByID(prev)
	currIdx := e.indexByID(curr)

	p := Partition{
		Added:   make([]*catalog.Object, 0),
		Removed: make([]*catalog.Object, 0),
		Changed: make([]*catalog.Object, 0),
	}
	for _, id := range currIdx.ids {
		entity := currIdx.byID[id]
		old, existed := prevIdx.byID[id]
		switch {
		case !existed:
			p.Added = append(p.Added, entity)
		case !entity.Equal(old):
			p.Changed = append(p.Changed, entity)
		}
	}
	for _, id := range prevIdx.ids {
		if _, ok := currIdx.byID[id]; !ok {
			p.Removed = append(p.Removed, prevIdx.byID[id])
		}
	}
	return p
}

// index is an insertion-ordered id -> entity mapping.
type index struct {
	ids  []string
	byID map[string]*catalog.Object
}

func (e *Engine) indexByID(entities []*catalog.Object) index {
	idx := index{byID: make(map[string]*catalog.Object, len(entities))}
	for _, entity := range entities {
		id := entity.GetString("id")
		if id == "" && e.log != nil {
			e.log.Warnw("entity without identifier, keyed as empty string",
				"title", entity.GetString("title"))
		}
		if _, seen := idx.byID[id]; !seen {
			idx.ids = append(idx.ids, id)
		}
		idx.byID[id] = entity
	}
	return idx
}
