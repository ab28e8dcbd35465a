package course

import (
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

// Activity block question types.
const (
	BlockMultipleChoice      = "multiple choice"
	BlockMultipleChoiceGroup = "multiple choice group"
)

// Activity is the parsed activity file of a lesson.
type Activity struct {
	Blocks []Block
}

// Block is one entry of an activity. Plain strings are narrative; mapping
// entries are interactive and are the ones progress is tracked for.
type Block struct {
	Index       int
	Interactive bool

	QuestionType string
	// NumChoices is set for multiple choice blocks.
	NumChoices int
	// GroupChoices holds the choice count of each question in a multiple
	// choice group.
	GroupChoices []int
}

type activityFile struct {
	Activity []yaml.Node `yaml:"activity"`
}

type blockBody struct {
	QuestionType  string      `yaml:"questionType"`
	Choices       []yaml.Node `yaml:"choices"`
	QuestionsList []struct {
		Choices []yaml.Node `yaml:"choices"`
	} `yaml:"questionsList"`
}

// ActivityFilename is the file holding the activity of a lesson.
func ActivityFilename(unitID, lessonID string) string {
	return fmt.Sprintf("activity-%s.%s.yaml", unitID, lessonID)
}

// AssessmentFilename is the file holding old-style assessment content.
func AssessmentFilename(assessmentID string) string {
	return fmt.Sprintf("assessment-%s.yaml", assessmentID)
}

// Activity returns the parsed activity of a lesson. Lessons without an
// activity yield nil. Parsed activities are cached for the life of the
// course.
func (c *Course) Activity(unitID, lessonID string) (*Activity, error) {
	has, found := c.HasActivity(unitID, lessonID)
	if !found || !has {
		return nil, nil
	}

	key := unitID + "/" + lessonID
	c.mu.Lock()
	defer c.mu.Unlock()
	if a, ok := c.activities[key]; ok {
		return a, nil
	}

	name := path.Join(c.dir, ActivityFilename(unitID, lessonID))
	a, err := c.loadActivity(name)
	if err != nil {
		return nil, err
	}
	c.activities[key] = a
	return a, nil
}

func (c *Course) loadActivity(name string) (*Activity, error) {
	if c.fsys == nil {
		return nil, fmt.Errorf("load activity %s: %w", name, fs.ErrNotExist)
	}
	data, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("load activity %s: %w", name, err)
	}

	var f activityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse activity %s: %w", name, err)
	}

	a := &Activity{Blocks: make([]Block, len(f.Activity))}
	for i := range f.Activity {
		node := &f.Activity[i]
		b := Block{Index: i}
		if node.Kind == yaml.MappingNode {
			var body blockBody
			if err := node.Decode(&body); err != nil {
				return nil, fmt.Errorf("parse activity %s block %d: %w", name, i, err)
			}
			b.Interactive = true
			b.QuestionType = body.QuestionType
			b.NumChoices = len(body.Choices)
			for _, q := range body.QuestionsList {
				b.GroupChoices = append(b.GroupChoices, len(q.Choices))
			}
		}
		a.Blocks[i] = b
	}
	return a, nil
}

// InteractiveBlocks returns the interactive blocks in order.
func (a *Activity) InteractiveBlocks() []Block {
	if a == nil {
		return nil
	}
	var out []Block
	for _, b := range a.Blocks {
		if b.Interactive {
			out = append(out, b)
		}
	}
	return out
}

// ValidBlockIDs returns the indices of interactive blocks in the lesson's
// activity. It fails if the lesson declares an activity whose file is
// missing or malformed.
func (c *Course) ValidBlockIDs(unitID, lessonID string) ([]int, error) {
	a, err := c.Activity(unitID, lessonID)
	if err != nil {
		return nil, err
	}
	var ids []int
	for _, b := range a.InteractiveBlocks() {
		ids = append(ids, b.Index)
	}
	return ids, nil
}

// AssessmentContent is old-style assessment content.
type AssessmentContent struct {
	Questions []AssessmentQuestion
}

// AssessmentQuestion is one entry of an old-style assessment.
type AssessmentQuestion struct {
	Text       string
	HasChoices bool
	NumChoices int
}

type assessmentFile struct {
	Assessment struct {
		QuestionsList []struct {
			QuestionHTML string      `yaml:"questionHTML"`
			Choices      []yaml.Node `yaml:"choices"`
		} `yaml:"questionsList"`
	} `yaml:"assessment"`
}

// AssessmentContent loads the old-style content file of an assessment. A
// missing file yields an error wrapping fs.ErrNotExist.
func (c *Course) AssessmentContent(assessmentID string) (*AssessmentContent, error) {
	name := path.Join(c.dir, AssessmentFilename(assessmentID))
	if c.fsys == nil {
		return nil, fmt.Errorf("load assessment %s: %w", name, fs.ErrNotExist)
	}
	data, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("load assessment %s: %w", name, err)
	}

	var f assessmentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse assessment %s: %w", name, err)
	}

	content := &AssessmentContent{}
	for _, q := range f.Assessment.QuestionsList {
		content.Questions = append(content.Questions, AssessmentQuestion{
			Text:       q.QuestionHTML,
			HasChoices: q.Choices != nil,
			NumChoices: len(q.Choices),
		})
	}
	return content, nil
}
