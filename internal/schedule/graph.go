package schedule

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/fundplan/internal/domain"
)

// Item is one schedulable record as seen by the graph.
type Item struct {
	ID    string
	Label string
	Start domain.DateRule
	End   domain.DateRule
}

func (it Item) rule(e domain.Endpoint) domain.DateRule {
	if e == domain.EndpointStart {
		return it.Start
	}
	return it.End
}

// Node is one date of one item.
type Node struct {
	ID       string
	Endpoint domain.Endpoint
}

func (n Node) String() string {
	return n.ID + "." + string(n.Endpoint)
}

// CycleError reports a chain of rules that leads back to its first node.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("date rules form a cycle: %s", strings.Join(e.Path, " -> "))
}

// Order returns every node of items so that each node comes after the node
// its rule reads. References to IDs outside items are external and add no
// edge. A node may read the other endpoint of its own item as long as no
// cycle results.
func Order(items []Item) ([]Node, error) {
	byID := make(map[string]Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	const (
		white = 0 // unvisited
		gray  = 1 // on the current path
		black = 2 // emitted
	)
	color := make(map[Node]int, len(items)*2)
	order := make([]Node, 0, len(items)*2)
	var path []Node

	var visit func(n Node) error
	visit = func(n Node) error {
		color[n] = gray
		path = append(path, n)
		rule := byID[n.ID].rule(n.Endpoint)
		if rule.IsEntity() && rule.RefID != "" {
			if _, internal := byID[rule.RefID]; internal {
				next := Node{ID: rule.RefID, Endpoint: rule.Endpoint}
				switch color[next] {
				case gray:
					return cycleFrom(path, next, byID)
				case white:
					if err := visit(next); err != nil {
						return err
					}
				}
			}
		}
		path = path[:len(path)-1]
		color[n] = black
		order = append(order, n)
		return nil
	}

	for _, it := range items {
		for _, e := range []domain.Endpoint{domain.EndpointStart, domain.EndpointEnd} {
			n := Node{ID: it.ID, Endpoint: e}
			if color[n] == white {
				if err := visit(n); err != nil {
					return nil, err
				}
			}
		}
	}
	return order, nil
}

func cycleFrom(path []Node, repeat Node, byID map[string]Item) *CycleError {
	start := 0
	for i, n := range path {
		if n == repeat {
			start = i
			break
		}
	}
	labels := make([]string, 0, len(path)-start+1)
	for _, n := range path[start:] {
		labels = append(labels, nodeLabel(n, byID))
	}
	labels = append(labels, nodeLabel(repeat, byID))
	return &CycleError{Path: labels}
}

func nodeLabel(n Node, byID map[string]Item) string {
	name := domain.CoalesceStr(byID[n.ID].Label, n.ID)
	return name + "." + string(n.Endpoint)
}

// Evaluate resolves the start and end dates of every item. Entity rules
// pointing inside items read the freshly computed value; other references
// are answered by external, which may be nil.
func Evaluate(items []Item, ms domain.Milestones, external Lookup) (map[string]domain.Span, error) {
	order, err := Order(items)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	spans := make(map[string]domain.Span, len(items))
	lookup := func(id string) (domain.Span, bool) {
		if _, internal := byID[id]; internal {
			return spans[id], true
		}
		if external == nil {
			return domain.Span{}, false
		}
		return external(id)
	}

	for _, n := range order {
		resolved := Resolve(byID[n.ID].rule(n.Endpoint), ms, lookup)
		span := spans[n.ID]
		if n.Endpoint == domain.EndpointStart {
			span.Start = resolved
		} else {
			span.End = resolved
		}
		spans[n.ID] = span
	}
	return spans, nil
}
