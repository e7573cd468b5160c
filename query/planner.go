package query

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rediwo/refdata/schema"
)

// Reflector discovers the relationship fields of an entity type
type Reflector interface {
	RelationshipsOf(model string) (map[string]schema.Relationship, error)
}

// PlanNode is one relationship to load eagerly, with the relationships of
// its target that are loaded beneath it
type PlanNode struct {
	Field        string
	Relationship schema.Relationship
	Children     []*PlanNode
}

// Plan is the eager-load plan of an entity type. Plans are immutable once
// built and shared between goroutines.
type Plan struct {
	Model string
	Nodes []*PlanNode
}

// Paths returns the dotted leaf paths of the plan in visiting order,
// e.g. "base", "quote" for an asset pair.
func (p *Plan) Paths() []string {
	var paths []string
	var walk func(prefix []string, nodes []*PlanNode)
	walk = func(prefix []string, nodes []*PlanNode) {
		for _, n := range nodes {
			path := append(append([]string(nil), prefix...), n.Field)
			if len(n.Children) == 0 {
				paths = append(paths, strings.Join(path, "."))
				continue
			}
			walk(path, n.Children)
		}
	}
	walk(nil, p.Nodes)
	return paths
}

// PlanCache memoizes plans per entity type for the life of the process.
// Concurrent first computations of the same type race harmlessly since
// plans are pure; the last writer wins.
type PlanCache struct {
	mu    sync.RWMutex
	plans map[string]*Plan
}

func NewPlanCache() *PlanCache {
	return &PlanCache{plans: make(map[string]*Plan)}
}

func (c *PlanCache) Get(model string) (*Plan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.plans[model]
	return p, ok
}

func (c *PlanCache) Put(model string, plan *Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[model] = plan
}

func (c *PlanCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.plans)
}

// Planner builds eager-load plans by walking declared relationships.
// A relationship whose target is already on the current descent path is
// loaded but not expanded, so cyclic schemas produce finite plans.
type Planner struct {
	reflector Reflector
	cache     *PlanCache
}

// NewPlanner creates a planner. A nil cache gets a private one.
func NewPlanner(reflector Reflector, cache *PlanCache) *Planner {
	if cache == nil {
		cache = NewPlanCache()
	}
	return &Planner{reflector: reflector, cache: cache}
}

func (p *Planner) Cache() *PlanCache {
	return p.cache
}

// PlanOf returns the plan of model, computing it on first use
func (p *Planner) PlanOf(model string) (*Plan, error) {
	if plan, ok := p.cache.Get(model); ok {
		return plan, nil
	}

	nodes, err := p.build(model, map[string]bool{model: true})
	if err != nil {
		return nil, err
	}

	plan := &Plan{Model: model, Nodes: nodes}
	p.cache.Put(model, plan)
	return plan, nil
}

func (p *Planner) build(model string, onPath map[string]bool) ([]*PlanNode, error) {
	rels, err := p.reflector.RelationshipsOf(model)
	if err != nil {
		return nil, fmt.Errorf("failed to plan %s: %w", model, err)
	}

	names := make([]string, 0, len(rels))
	for name := range rels {
		names = append(names, name)
	}
	sort.Strings(names)

	nodes := make([]*PlanNode, 0, len(names))
	for _, name := range names {
		rel := rels[name]
		node := &PlanNode{Field: name, Relationship: rel}

		target := rel.Target.Name
		if !onPath[target] {
			onPath[target] = true
			children, err := p.build(target, onPath)
			delete(onPath, target)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
