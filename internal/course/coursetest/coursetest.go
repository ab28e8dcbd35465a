// Package coursetest provides a small course definition for tests.
package coursetest

import (
	"testing"
	"testing/fstest"

	"github.com/abhisek/progresstrack/internal/course"
)

// CourseYAML defines two units, two assessments and a link:
//
//	unit 1: lesson 1 (activity with interactive blocks 1, 3, 4; question q1)
//	        lesson 2 (question group g1, no activity)
//	        lesson 3 (empty page)
//	assessment Pre (question aq1, question group ag1)
//	unit 2: lesson 1 (activity without interactive blocks; no components)
//	assessment Fin (old-style content file)
const CourseYAML = `
title: Geography 101
units:
  - id: "1"
    type: unit
    title: Capitals
    lessons:
      - id: "1"
        title: Europe
        activity: true
        components:
          - name: text
          - name: question
            instance_id: q1
            question: Q1
      - id: "2"
        title: Arithmetic detour
        components:
          - name: question-group
            instance_id: g1
            group: G1
      - id: "3"
        title: Summary
  - id: Pre
    type: assessment
    title: Pre-course check
    components:
      - name: question
        instance_id: aq1
        question: Q1
      - name: question-group
        instance_id: ag1
        group: G1
  - id: "2"
    type: unit
    title: Rivers
    lessons:
      - id: "1"
        title: Overview
        activity: true
  - id: Fin
    type: assessment
    title: Final exam
  - id: forum
    type: link
    title: Forum
questions:
  - id: Q1
    type: multiple_choice
    description: Capital of France
    choices: [Paris, Rome, Oslo]
  - id: Q2
    type: short_answer
    description: Spell a river
  - id: Q3
    type: multiple_choice
    description: Is the Nile long
    choices: ["yes", "no"]
question_groups:
  - id: G1
    description: Mixed bag
    questions: [Q2, Q3]
`

const activity11 = `
activity:
  - "<p>Read this first.</p>"
  - questionType: multiple choice
    choices:
      - ["Paris", true, "Correct"]
      - ["Rome", false, "No"]
      - ["Oslo", false, "No"]
  - "<p>Next.</p>"
  - questionType: multiple choice group
    questionsList:
      - questionHTML: "2+2?"
        choices: ["3", "4"]
        correctIndex: 1
      - questionHTML: "3+3?"
        choices: ["6", "7", "8"]
        correctIndex: 0
  - questionType: freetext
    correctAnswerRegex: "/yes/i"
`

const activity21 = `
activity:
  - "<p>Rivers flow.</p>"
  - "<p>That is all.</p>"
`

const assessmentFin = `
assessment:
  questionsList:
    - questionHTML: "Pick one"
      choices: ["a", "b", "c", "d"]
    - questionHTML: "Type it"
      correctAnswerString: "x"
`

// FS returns a fresh filesystem holding the course and its content files
// under course/.
func FS() fstest.MapFS {
	return fstest.MapFS{
		"course/course.yaml":         {Data: []byte(CourseYAML)},
		"course/activity-1.1.yaml":   {Data: []byte(activity11)},
		"course/activity-2.1.yaml":   {Data: []byte(activity21)},
		"course/assessment-Fin.yaml": {Data: []byte(assessmentFin)},
	}
}

// Load loads the course from fsys, failing the test on error.
func Load(t testing.TB, fsys fstest.MapFS) *course.Course {
	t.Helper()
	c, err := course.Load(fsys, "course/course.yaml")
	if err != nil {
		t.Fatalf("load test course: %v", err)
	}
	return c
}

// New loads the default test course.
func New(t testing.TB) *course.Course {
	t.Helper()
	return Load(t, FS())
}
