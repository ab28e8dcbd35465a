package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		entity EntityType
		ids    []string
		want   string
	}{
		{EntityUnit, []string{"3"}, "u.3"},
		{EntityLesson, []string{"3", "2"}, "u.3.l.2"},
		{EntityActivity, []string{"3", "2"}, "u.3.l.2.a.0"},
		{EntityHTML, []string{"3", "2"}, "u.3.l.2.h.0"},
		{EntityBlock, []string{"3", "2", "4"}, "u.3.l.2.a.0.b.4"},
		{EntityComponent, []string{"3", "2", "q1"}, "u.3.l.2.h.0.c.q1"},
		{EntityAssessment, []string{"Pre"}, "s.Pre"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			key, err := Encode(tt.entity, tt.ids...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)

			entity, ids, err := Decode(key)
			require.NoError(t, err)
			assert.Equal(t, tt.entity, entity)
			assert.Equal(t, tt.ids, ids)

			assert.Equal(t, tt.entity, EntityTypeOf(key))
			assert.Equal(t, tt.entity.IsComposite(), IsComposite(key))
		})
	}
}

func TestTypedBuildersMatchEncode(t *testing.T) {
	mustEncode := func(e EntityType, ids ...string) string {
		k, err := Encode(e, ids...)
		require.NoError(t, err)
		return k
	}
	assert.Equal(t, mustEncode(EntityUnit, "1"), UnitKey("1"))
	assert.Equal(t, mustEncode(EntityLesson, "1", "2"), LessonKey("1", "2"))
	assert.Equal(t, mustEncode(EntityActivity, "1", "2"), ActivityKey("1", "2"))
	assert.Equal(t, mustEncode(EntityHTML, "1", "2"), HTMLKey("1", "2"))
	assert.Equal(t, mustEncode(EntityBlock, "1", "2", "7"), BlockKey("1", "2", 7))
	assert.Equal(t, mustEncode(EntityComponent, "1", "2", "x"), ComponentKey("1", "2", "x"))
	assert.Equal(t, mustEncode(EntityAssessment, "A"), AssessmentKey("A"))
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		entity EntityType
		ids    []string
	}{
		{"too few ids", EntityLesson, []string{"1"}},
		{"too many ids", EntityUnit, []string{"1", "2"}},
		{"empty id", EntityUnit, []string{""}},
		{"dotted id", EntityAssessment, []string{"a.b"}},
		{"unknown type", EntityUnknown, []string{"1"}},
		{"fixed index passed", EntityActivity, []string{"1", "2", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.entity, tt.ids...)
			assert.Error(t, err)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, key := range []string{
		"",
		"u",
		"u.1.l",
		"x.1",
		"l.1",
		"u.1.a.0",
		"u.1.l.2.a.1",
		"u.1.l.2.h.0.b.3",
		"u..l.2",
	} {
		t.Run(key, func(t *testing.T) {
			_, _, err := Decode(key)
			assert.Error(t, err)
		})
	}
}

func TestParentKey(t *testing.T) {
	tests := []struct {
		key    string
		parent string
		ok     bool
	}{
		{"u.1.l.2.a.0.b.3", "u.1.l.2.a.0", true},
		{"u.1.l.2.a.0", "u.1.l.2", true},
		{"u.1.l.2.h.0.c.q", "u.1.l.2.h.0", true},
		{"u.1.l.2", "u.1", true},
		{"u.1", "", false},
		{"s.Pre", "", false},
	}
	for _, tt := range tests {
		parent, ok := ParentKey(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		assert.Equal(t, tt.parent, parent, tt.key)
	}
}

func TestEntityTypeNames(t *testing.T) {
	for _, e := range AllEntityTypes() {
		parsed, err := ParseEntityType(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, parsed)
		assert.Equal(t, e, EntityTypeFromCode(e.Code()))
	}
	_, err := ParseEntityType("chapter")
	assert.Error(t, err)
	assert.Equal(t, EntityUnknown, EntityTypeFromCode("z"))
	assert.Equal(t, EntityUnknown, EntityTypeOf("nodots"))
}
