package progress

// derivedParent returns the composite whose state depends on entities of
// type t. Units and assessments have none.
func derivedParent(t EntityType) (EntityType, bool) {
	switch t {
	case EntityBlock:
		return EntityActivity, true
	case EntityComponent:
		return EntityHTML, true
	case EntityActivity, EntityHTML:
		return EntityLesson, true
	case EntityLesson:
		return EntityUnit, true
	}
	return EntityUnknown, false
}

// apply records an event on key and cascades to derived parents. A direct
// event on a composite forces it completed; a derived one re-evaluates it
// from its children. Leaf events count attempts.
func (t *Tracker) apply(rec *Record, entity EntityType, key string, sc *scope, direct bool) {
	switch {
	case !entity.IsComposite():
		rec.Inc(key, 1)
	case direct:
		rec.Set(key, int(StateCompleted))
	default:
		t.update(rec, entity, key, sc)
	}

	parent, ok := derivedParent(entity)
	if !ok {
		return
	}
	parentKey, ok := ParentKey(key)
	if !ok {
		return
	}
	t.apply(rec, parent, parentKey, sc, false)
}

// update re-evaluates a composite. Completed is terminal. Otherwise the
// composite is at least in progress, and completed once every required
// child is.
func (t *Tracker) update(rec *Record, entity EntityType, key string, sc *scope) {
	if State(rec.value(key)) == StateCompleted {
		return
	}
	rec.Set(key, int(StateInProgress))

	if t.childrenComplete(rec, entity, sc) {
		rec.Set(key, int(StateCompleted))
	}
}

func (t *Tracker) childrenComplete(rec *Record, entity EntityType, sc *scope) bool {
	switch entity {
	case EntityUnit:
		for _, lessonID := range sc.lessonIDs {
			if LessonStatus(rec, sc.unitID, lessonID) != StateCompleted {
				return false
			}
		}
		return true

	case EntityLesson:
		if !sc.lessonFound {
			return false
		}
		if sc.hasActivity && ActivityStatus(rec, sc.unitID, sc.lessonID) != StateCompleted {
			return false
		}
		return HTMLStatus(rec, sc.unitID, sc.lessonID) == StateCompleted

	case EntityActivity:
		// An activity with no interactive blocks is complete as soon as
		// anything is recorded against it.
		for _, blockID := range sc.blockIDs {
			if !IsBlockCompleted(rec, sc.unitID, sc.lessonID, blockID) {
				return false
			}
		}
		return true

	case EntityHTML:
		for _, componentID := range sc.componentIDs {
			if !IsComponentCompleted(rec, sc.unitID, sc.lessonID, componentID) {
				return false
			}
		}
		return true
	}
	return false
}
