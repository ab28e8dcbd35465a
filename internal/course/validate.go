package course

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCourse is wrapped by every validation failure.
var ErrInvalidCourse = errors.New("course validation failed")

// Validate performs all structural checks on the course definition.
// Returns a combined error describing all problems found, or nil if valid.
func (c *Course) Validate() error {
	var errs []string

	checkID := func(kind, id string) {
		switch {
		case id == "":
			errs = append(errs, fmt.Sprintf("%s with empty id", kind))
		case strings.Contains(id, "."):
			errs = append(errs, fmt.Sprintf("%s id %q must not contain '.'", kind, id))
		}
	}

	questionIDs := make(map[string]bool, len(c.Questions))
	for _, q := range c.Questions {
		checkID("question", q.ID)
		if questionIDs[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		questionIDs[q.ID] = true
		switch q.Type {
		case QuestionMultipleChoice:
			if len(q.Choices) == 0 {
				errs = append(errs, fmt.Sprintf("multiple choice question %q has no choices", q.ID))
			}
		case QuestionShortAnswer:
		default:
			errs = append(errs, fmt.Sprintf("question %q has unknown type %q", q.ID, q.Type))
		}
	}

	groupIDs := make(map[string]bool, len(c.QuestionGroups))
	for _, g := range c.QuestionGroups {
		checkID("question group", g.ID)
		if groupIDs[g.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question group ID: %q", g.ID))
		}
		groupIDs[g.ID] = true
		for _, qid := range g.Questions {
			if !questionIDs[qid] {
				errs = append(errs, fmt.Sprintf("question group %q references nonexistent question %q", g.ID, qid))
			}
		}
	}

	checkComponents := func(owner string, cpts []Component) {
		instances := make(map[string]bool, len(cpts))
		for _, cpt := range cpts {
			if cpt.InstanceID != "" {
				if instances[cpt.InstanceID] {
					errs = append(errs, fmt.Sprintf("%s: duplicate component instance %q", owner, cpt.InstanceID))
				}
				instances[cpt.InstanceID] = true
				if strings.Contains(cpt.InstanceID, ".") {
					errs = append(errs, fmt.Sprintf("%s: component instance %q must not contain '.'", owner, cpt.InstanceID))
				}
			}
			switch cpt.Name {
			case ComponentQuestion:
				if cpt.InstanceID == "" {
					errs = append(errs, fmt.Sprintf("%s: question component without instance_id", owner))
				}
				if !questionIDs[cpt.Question] {
					errs = append(errs, fmt.Sprintf("%s: component %q references nonexistent question %q", owner, cpt.InstanceID, cpt.Question))
				}
			case ComponentQuestionGroup:
				if cpt.InstanceID == "" {
					errs = append(errs, fmt.Sprintf("%s: question-group component without instance_id", owner))
				}
				if !groupIDs[cpt.Group] {
					errs = append(errs, fmt.Sprintf("%s: component %q references nonexistent question group %q", owner, cpt.InstanceID, cpt.Group))
				}
			}
		}
	}

	unitIDs := make(map[string]bool, len(c.Units))
	for _, u := range c.Units {
		checkID("unit", u.ID)
		if unitIDs[u.ID] {
			errs = append(errs, fmt.Sprintf("duplicate unit ID: %q", u.ID))
		}
		unitIDs[u.ID] = true

		switch u.Type {
		case UnitTypeUnit, UnitTypeLink:
		case UnitTypeAssessment:
			checkComponents(fmt.Sprintf("assessment %q", u.ID), u.Components)
		default:
			errs = append(errs, fmt.Sprintf("unit %q has unknown type %q", u.ID, u.Type))
		}
		if u.Type != UnitTypeUnit && len(u.Lessons) > 0 {
			errs = append(errs, fmt.Sprintf("%s %q must not have lessons", u.Type, u.ID))
		}

		lessonIDs := make(map[string]bool, len(u.Lessons))
		for _, l := range u.Lessons {
			checkID(fmt.Sprintf("unit %q lesson", u.ID), l.ID)
			if lessonIDs[l.ID] {
				errs = append(errs, fmt.Sprintf("unit %q: duplicate lesson ID: %q", u.ID, l.ID))
			}
			lessonIDs[l.ID] = true
			checkComponents(fmt.Sprintf("unit %q lesson %q", u.ID, l.ID), l.Components)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalidCourse, strings.Join(errs, "\n  "))
	}
	return nil
}
