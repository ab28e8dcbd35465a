package progress

import (
	"fmt"
	"strconv"
	"strings"
)

// EntityType identifies a node kind in the course hierarchy.
type EntityType int

const (
	EntityUnknown EntityType = iota
	EntityUnit
	EntityLesson
	EntityActivity
	EntityHTML
	EntityBlock
	EntityAssessment
	EntityComponent
)

// AllEntityTypes returns every known entity type in hierarchy order.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityUnit,
		EntityLesson,
		EntityActivity,
		EntityHTML,
		EntityBlock,
		EntityAssessment,
		EntityComponent,
	}
}

// String returns the entity name used in events and reports.
func (t EntityType) String() string {
	switch t {
	case EntityUnit:
		return "unit"
	case EntityLesson:
		return "lesson"
	case EntityActivity:
		return "activity"
	case EntityHTML:
		return "html"
	case EntityBlock:
		return "block"
	case EntityAssessment:
		return "assessment"
	case EntityComponent:
		return "component"
	default:
		return "unknown"
	}
}

// Code returns the single-letter key segment for the entity type.
func (t EntityType) Code() string {
	switch t {
	case EntityUnit:
		return "u"
	case EntityLesson:
		return "l"
	case EntityActivity:
		return "a"
	case EntityHTML:
		return "h"
	case EntityBlock:
		return "b"
	case EntityAssessment:
		return "s"
	case EntityComponent:
		return "c"
	default:
		return ""
	}
}

// IsComposite reports whether the entity's value is derived from its children.
func (t EntityType) IsComposite() bool {
	switch t {
	case EntityUnit, EntityLesson, EntityActivity, EntityHTML:
		return true
	}
	return false
}

// ParseEntityType maps an entity name ("unit", "block", ...) back to its type.
func ParseEntityType(name string) (EntityType, error) {
	for _, t := range AllEntityTypes() {
		if t.String() == name {
			return t, nil
		}
	}
	return EntityUnknown, fmt.Errorf("unknown entity type: %q", name)
}

// EntityTypeFromCode maps a key segment code back to its type.
// Returns EntityUnknown for unmapped codes.
func EntityTypeFromCode(code string) EntityType {
	for _, t := range AllEntityTypes() {
		if t.Code() == code {
			return t
		}
	}
	return EntityUnknown
}

// fixedIndex is the id used for the activity and html segments. A lesson has
// at most one of each.
const fixedIndex = "0"

const keySep = "."

// keyPath lists the segments, outermost first, that make up a key for each type.
var keyPath = map[EntityType][]EntityType{
	EntityUnit:       {EntityUnit},
	EntityLesson:     {EntityUnit, EntityLesson},
	EntityActivity:   {EntityUnit, EntityLesson, EntityActivity},
	EntityHTML:       {EntityUnit, EntityLesson, EntityHTML},
	EntityBlock:      {EntityUnit, EntityLesson, EntityActivity, EntityBlock},
	EntityComponent:  {EntityUnit, EntityLesson, EntityHTML, EntityComponent},
	EntityAssessment: {EntityAssessment},
}

// hasFixedID reports whether seg carries the literal fixed index when it is
// an ancestor segment or the key's own segment.
func hasFixedID(seg EntityType) bool {
	return seg == EntityActivity || seg == EntityHTML
}

// Encode builds the hierarchical key for an entity from its ancestor ids,
// outermost first. The activity/html index is implied and must not be passed.
//
//	Encode(EntityUnit, "3")            -> "u.3"
//	Encode(EntityLesson, "3", "2")     -> "u.3.l.2"
//	Encode(EntityBlock, "3", "2", "4") -> "u.3.l.2.a.0.b.4"
func Encode(t EntityType, ids ...string) (string, error) {
	path, ok := keyPath[t]
	if !ok {
		return "", fmt.Errorf("encode key: unknown entity type %d", int(t))
	}

	parts := make([]string, 0, len(path)*2)
	next := 0
	for _, seg := range path {
		var id string
		if hasFixedID(seg) {
			id = fixedIndex
		} else {
			if next >= len(ids) {
				return "", fmt.Errorf("encode %s key: expected %d ids, got %d", t, idCount(t), len(ids))
			}
			id = ids[next]
			next++
			if id == "" {
				return "", fmt.Errorf("encode %s key: empty %s id", t, seg)
			}
			if strings.Contains(id, keySep) {
				return "", fmt.Errorf("encode %s key: %s id %q contains %q", t, seg, id, keySep)
			}
		}
		parts = append(parts, seg.Code(), id)
	}
	if next != len(ids) {
		return "", fmt.Errorf("encode %s key: expected %d ids, got %d", t, idCount(t), len(ids))
	}
	return strings.Join(parts, keySep), nil
}

// idCount returns how many caller-supplied ids a key of type t needs.
func idCount(t EntityType) int {
	n := 0
	for _, seg := range keyPath[t] {
		if !hasFixedID(seg) {
			n++
		}
	}
	return n
}

// Decode splits a key into its entity type and the caller-supplied ids that
// produced it, so that Encode(Decode(k)) == k for every well-formed key.
func Decode(key string) (EntityType, []string, error) {
	tokens := strings.Split(key, keySep)
	if len(tokens) < 2 || len(tokens)%2 != 0 {
		return EntityUnknown, nil, fmt.Errorf("decode key %q: odd or short segment count", key)
	}

	t := EntityTypeFromCode(tokens[len(tokens)-2])
	path, ok := keyPath[t]
	if !ok || len(path)*2 != len(tokens) {
		return EntityUnknown, nil, fmt.Errorf("decode key %q: not a known entity path", key)
	}

	var ids []string
	for i, seg := range path {
		code, id := tokens[2*i], tokens[2*i+1]
		if code != seg.Code() {
			return EntityUnknown, nil, fmt.Errorf("decode key %q: segment %d is %q, want %q", key, i, code, seg.Code())
		}
		if id == "" {
			return EntityUnknown, nil, fmt.Errorf("decode key %q: empty id at segment %d", key, i)
		}
		if hasFixedID(seg) {
			if id != fixedIndex {
				return EntityUnknown, nil, fmt.Errorf("decode key %q: %s index must be %s", key, seg, fixedIndex)
			}
			continue
		}
		ids = append(ids, id)
	}
	return t, ids, nil
}

// EntityTypeOf returns the type of the entity a key refers to: the
// second-to-last segment mapped through the code table.
func EntityTypeOf(key string) EntityType {
	tokens := strings.Split(key, keySep)
	if len(tokens) < 2 {
		return EntityUnknown
	}
	return EntityTypeFromCode(tokens[len(tokens)-2])
}

// IsComposite reports whether the key refers to a unit, lesson, activity or html body.
func IsComposite(key string) bool {
	return EntityTypeOf(key).IsComposite()
}

// ParentKey drops the deepest type/id pair. Keys one level deep (units and
// assessments) have no parent.
func ParentKey(key string) (string, bool) {
	tokens := strings.Split(key, keySep)
	if len(tokens) <= 2 {
		return "", false
	}
	return strings.Join(tokens[:len(tokens)-2], keySep), true
}

// Typed builders. Ids come from a validated course, so these never fail.

func UnitKey(unitID string) string {
	return EntityUnit.Code() + keySep + unitID
}

func LessonKey(unitID, lessonID string) string {
	return UnitKey(unitID) + keySep + EntityLesson.Code() + keySep + lessonID
}

func ActivityKey(unitID, lessonID string) string {
	return LessonKey(unitID, lessonID) + keySep + EntityActivity.Code() + keySep + fixedIndex
}

func HTMLKey(unitID, lessonID string) string {
	return LessonKey(unitID, lessonID) + keySep + EntityHTML.Code() + keySep + fixedIndex
}

func BlockKey(unitID, lessonID string, blockID int) string {
	return ActivityKey(unitID, lessonID) + keySep + EntityBlock.Code() + keySep + strconv.Itoa(blockID)
}

func ComponentKey(unitID, lessonID, componentID string) string {
	return HTMLKey(unitID, lessonID) + keySep + EntityComponent.Code() + keySep + componentID
}

func AssessmentKey(assessmentID string) string {
	return EntityAssessment.Code() + keySep + assessmentID
}
