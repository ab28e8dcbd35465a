package stats

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/abhisek/progresstrack/internal/course"
	"github.com/abhisek/progresstrack/internal/progress"
)

// Node is one entity of the course structure tree. Children are grouped by
// entity code ("u", "l", ...) and keyed by id. Every non-leaf node carries a
// group for each child kind, empty if it has no such children.
type Node struct {
	Label    string                      `json:"label"`
	Children map[string]map[string]*Node `json:"children,omitempty"`
}

func (n *Node) group(t progress.EntityType) map[string]*Node {
	if n.Children == nil {
		n.Children = make(map[string]map[string]*Node)
	}
	g, ok := n.Children[t.Code()]
	if !ok {
		g = make(map[string]*Node)
		n.Children[t.Code()] = g
	}
	return g
}

// BuildStructure returns the labelled tree of trackable entities in the
// course, for presenting progress tallies.
func BuildStructure(c *course.Course) (*Node, error) {
	title := c.Title
	if title == "" {
		title = "UNTITLED COURSE"
	}
	root := &Node{Label: title}

	units := root.group(progress.EntityUnit)
	for _, u := range c.UnitsOfType(course.UnitTypeUnit) {
		un := &Node{Label: fmt.Sprintf("Unit %d", u.Index)}
		lessons := un.group(progress.EntityLesson)
		for _, l := range u.Lessons {
			ln, err := lessonNode(c, u, l)
			if err != nil {
				return nil, err
			}
			lessons[l.ID] = ln
		}
		units[u.ID] = un
	}

	assessments := root.group(progress.EntityAssessment)
	for _, a := range c.Assessments() {
		assessments[a.ID] = &Node{Label: a.Title}
	}
	return root, nil
}

func lessonNode(c *course.Course, u course.Unit, l course.Lesson) (*Node, error) {
	ln := &Node{Label: strconv.Itoa(l.Index)}
	prefix := fmt.Sprintf("L%d.%d", u.Index, l.Index)

	activities := ln.group(progress.EntityActivity)
	if l.HasActivity {
		an := &Node{Label: prefix}
		blocks := an.group(progress.EntityBlock)
		blockIDs, err := c.ValidBlockIDs(u.ID, l.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range blockIDs {
			blocks[strconv.Itoa(id)] = &Node{Label: fmt.Sprintf("%s.%d", prefix, id)}
		}
		activities["0"] = an
	}

	hn := &Node{Label: prefix}
	components := hn.group(progress.EntityComponent)
	componentIDs, err := c.ValidComponentIDs(u.ID, l.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range componentIDs {
		components[id] = &Node{Label: fmt.Sprintf("%s.%s", prefix, id)}
	}
	ln.group(progress.EntityHTML)["0"] = hn

	return ln, nil
}

// childOrder lists entity codes in display order.
var childOrder = []progress.EntityType{
	progress.EntityUnit,
	progress.EntityAssessment,
	progress.EntityLesson,
	progress.EntityActivity,
	progress.EntityBlock,
	progress.EntityHTML,
	progress.EntityComponent,
}

// Walk visits every descendant depth-first, passing its hierarchical key
// and depth (1 for the root's children). Siblings are visited in entity
// order, then by id, numerically when both ids are numbers.
func (n *Node) Walk(fn func(key string, depth int, node *Node)) {
	n.walk("", 1, fn)
}

func (n *Node) walk(prefix string, depth int, fn func(string, int, *Node)) {
	for _, t := range childOrder {
		group := n.Children[t.Code()]
		for _, id := range sortedIDs(group) {
			key := t.Code() + "." + id
			if prefix != "" {
				key = prefix + "." + key
			}
			child := group[id]
			fn(key, depth, child)
			child.walk(key, depth+1, fn)
		}
	}
}

func sortedIDs(group map[string]*Node) []string {
	ids := slices.Collect(maps.Keys(group))
	slices.SortFunc(ids, func(a, b string) int {
		ai, aerr := strconv.Atoi(a)
		bi, berr := strconv.Atoi(b)
		if aerr == nil && berr == nil {
			return cmp.Compare(ai, bi)
		}
		return strings.Compare(a, b)
	})
	return ids
}
