// Package hierarchy turns flat category lists into a forest and answers
// ancestor and descendant queries over them. Every traversal keeps a visited
// set, so corrupt parent chains terminate instead of looping.
package hierarchy

import (
	"fmt"
	"sort"

	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"
)

// OrphanPolicy decides what happens to a category whose parent is not in the input
type OrphanPolicy string

const (
	// DropOrphans omits the orphan and its subtree from the forest
	DropOrphans OrphanPolicy = "drop"
	// PromoteOrphans turns the orphan into a root at level 0
	PromoteOrphans OrphanPolicy = "promote"
)

// ParseOrphanPolicy parses "drop" or "promote"
func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch OrphanPolicy(s) {
	case DropOrphans, PromoteOrphans:
		return OrphanPolicy(s), nil
	}
	return "", fmt.Errorf("unknown orphan policy %q", s)
}

// Node is a category placed in the forest
type Node struct {
	models.Category
	Level    int     `json:"level"`
	Children []*Node `json:"children"`
}

// Option configures Build
type Option func(*Tree)

// WithOrphanPolicy sets the orphan policy. The default is DropOrphans.
func WithOrphanPolicy(policy OrphanPolicy) Option {
	return func(t *Tree) {
		t.policy = policy
	}
}

// Tree indexes a flat category list. It is immutable after Build.
type Tree struct {
	policy   OrphanPolicy
	order    []uint
	index    map[uint]models.Category
	children map[uint][]uint
	roots    []*Node
	warnings []pricing.ConsistencyWarning
}

// Build indexes categories and assembles the forest.
// Input order is preserved at every level; use Sort first for (sortOrder, name) ordering.
// Duplicate ids keep the first occurrence.
func Build(categories []models.Category, opts ...Option) *Tree {
	t := &Tree{
		policy:   DropOrphans,
		order:    make([]uint, 0, len(categories)),
		index:    make(map[uint]models.Category, len(categories)),
		children: make(map[uint][]uint),
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, c := range categories {
		if _, dup := t.index[c.ID]; dup {
			continue
		}
		t.index[c.ID] = c
		t.order = append(t.order, c.ID)
	}
	for _, id := range t.order {
		c := t.index[id]
		if c.ParentID != nil {
			t.children[*c.ParentID] = append(t.children[*c.ParentID], id)
		}
	}

	placed := make(map[uint]bool, len(t.order))
	for _, id := range t.order {
		c := t.index[id]
		switch {
		case c.ParentID == nil:
		case !t.has(*c.ParentID):
			t.warnings = append(t.warnings, orphanWarning(c, t.policy))
			if t.policy != PromoteOrphans {
				continue
			}
		default:
			continue
		}
		t.roots = append(t.roots, t.attach(id, 0, placed))
	}

	for _, id := range t.order {
		c := t.index[id]
		if placed[id] || !t.has(*c.ParentID) {
			continue
		}
		w := pricing.ConsistencyWarning{
			Kind:      pricing.WarningCategoryCycle,
			Entity:    "category",
			ID:        fmt.Sprint(c.ID),
			Reference: fmt.Sprint(*c.ParentID),
			Message:   "category parent chain forms a cycle; category omitted from tree",
		}
		if !t.onCycle(id) {
			w.Kind = t.blockedBy(id)
			w.Message = "an ancestor category was omitted; category omitted from tree"
		}
		t.warnings = append(t.warnings, w)
	}
	return t
}

func orphanWarning(c models.Category, policy OrphanPolicy) pricing.ConsistencyWarning {
	action := "omitted from tree"
	if policy == PromoteOrphans {
		action = "promoted to root"
	}
	return pricing.ConsistencyWarning{
		Kind:      pricing.WarningOrphanedCategory,
		Entity:    "category",
		ID:        fmt.Sprint(c.ID),
		Reference: fmt.Sprint(*c.ParentID),
		Message:   "parent category not found; " + action,
	}
}

func (t *Tree) attach(id uint, level int, placed map[uint]bool) *Node {
	placed[id] = true
	node := &Node{Category: t.index[id], Level: level, Children: []*Node{}}
	for _, childID := range t.children[id] {
		if placed[childID] {
			continue
		}
		node.Children = append(node.Children, t.attach(childID, level+1, placed))
	}
	return node
}

// onCycle reports whether walking up from id leads back to id.
// Categories hanging below a cycle are not on it.
func (t *Tree) onCycle(id uint) bool {
	seen := map[uint]bool{}
	current := id
	for {
		c, ok := t.index[current]
		if !ok || c.ParentID == nil {
			return false
		}
		current = *c.ParentID
		if current == id {
			return true
		}
		if seen[current] {
			return false
		}
		seen[current] = true
	}
}

// blockedBy walks up from a category that could not be placed and reports
// whether its chain ends at a missing parent or runs into a cycle.
func (t *Tree) blockedBy(id uint) pricing.WarningKind {
	seen := map[uint]bool{id: true}
	current := id
	for {
		c := t.index[current]
		if c.ParentID == nil || !t.has(*c.ParentID) {
			return pricing.WarningOrphanedCategory
		}
		current = *c.ParentID
		if seen[current] {
			return pricing.WarningCategoryCycle
		}
		seen[current] = true
	}
}

func (t *Tree) has(id uint) bool {
	_, ok := t.index[id]
	return ok
}

// Roots returns the forest
func (t *Tree) Roots() []*Node {
	return t.roots
}

// Warnings returns the orphans and cycles found by Build
func (t *Tree) Warnings() []pricing.ConsistencyWarning {
	return t.warnings
}

// Len returns the number of indexed categories
func (t *Tree) Len() int {
	return len(t.order)
}

// Get returns an indexed category
func (t *Tree) Get(id uint) (models.Category, bool) {
	c, ok := t.index[id]
	return c, ok
}

// Children returns the direct children of parentID in input order
func (t *Tree) Children(parentID uint) []models.Category {
	ids := t.children[parentID]
	out := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		if id == parentID {
			continue
		}
		out = append(out, t.index[id])
	}
	return out
}

// Descendants returns every category below id in pre-order
// (parent before children, depth-first, left-to-right). id itself is excluded.
func (t *Tree) Descendants(id uint) []models.Category {
	out := []models.Category{}
	visited := map[uint]bool{id: true}
	var walk func(parent uint)
	walk = func(parent uint) {
		for _, childID := range t.children[parent] {
			if visited[childID] {
				continue
			}
			visited[childID] = true
			out = append(out, t.index[childID])
			walk(childID)
		}
	}
	walk(id)
	return out
}

// Path returns the chain from the topmost reachable ancestor down to id.
// The walk stops at a missing parent or a revisited category. Unknown ids yield nil.
func (t *Tree) Path(id uint) []models.Category {
	c, ok := t.index[id]
	if !ok {
		return nil
	}
	path := []models.Category{c}
	visited := map[uint]bool{id: true}
	for c.ParentID != nil && !visited[*c.ParentID] {
		parent, ok := t.index[*c.ParentID]
		if !ok {
			break
		}
		visited[parent.ID] = true
		path = append(path, parent)
		c = parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// IsDescendant reports whether candidate lies below ancestor
func (t *Tree) IsDescendant(ancestor, candidate uint) bool {
	for _, c := range t.Descendants(ancestor) {
		if c.ID == candidate {
			return true
		}
	}
	return false
}

// Flatten lists the forest in pre-order
func Flatten(roots []*Node) []*Node {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(roots)
	return out
}

// Sort orders categories by (sortOrder asc, name asc) in place
func Sort(categories []models.Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].Name < categories[j].Name
	})
}
