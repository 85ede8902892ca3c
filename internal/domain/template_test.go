package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTemplate() ClassTemplate {
	return ClassTemplate{
		ID:              "adult-beginners-mon",
		Name:            "Adult Beginners",
		Instructor:      "Marko Ilic",
		Weekday:         0,
		StartTime:       "18:00",
		DurationMinutes: 60,
		Capacity:        20,
	}
}

func TestClassTemplate_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*ClassTemplate)
		valid  bool
	}{
		{name: "valid", mutate: func(t *ClassTemplate) {}, valid: true},
		{name: "sunday valid", mutate: func(t *ClassTemplate) { t.Weekday = 6 }, valid: true},
		{name: "missing id", mutate: func(t *ClassTemplate) { t.ID = "" }},
		{name: "missing name", mutate: func(t *ClassTemplate) { t.Name = "" }},
		{name: "weekday negative", mutate: func(t *ClassTemplate) { t.Weekday = -1 }},
		{name: "weekday too large", mutate: func(t *ClassTemplate) { t.Weekday = 7 }},
		{name: "bad time format", mutate: func(t *ClassTemplate) { t.StartTime = "1800" }},
		{name: "bad hour", mutate: func(t *ClassTemplate) { t.StartTime = "25:00" }},
		{name: "bad minute", mutate: func(t *ClassTemplate) { t.StartTime = "18:61" }},
		{name: "zero duration", mutate: func(t *ClassTemplate) { t.DurationMinutes = 0 }},
		{name: "zero capacity", mutate: func(t *ClassTemplate) { t.Capacity = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tmpl := validTemplate()
			tc.mutate(&tmpl)
			err := tmpl.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrTemplateInvalid)
			}
		})
	}
}

func TestClassTemplate_ScheduleKey(t *testing.T) {
	tmpl := validTemplate()

	assert.Equal(t, tmpl.ScheduleKey(), tmpl.ScheduleKey(), "key must be deterministic")
	assert.Len(t, tmpl.ScheduleKey(), 16)

	other := validTemplate()
	other.StartTime = "19:00"
	assert.NotEqual(t, tmpl.ScheduleKey(), other.ScheduleKey(), "different slots must have different keys")

	renamed := validTemplate()
	renamed.Name = "Renamed"
	renamed.Capacity = 5
	assert.Equal(t, tmpl.ScheduleKey(), renamed.ScheduleKey(), "key depends only on id, weekday and time")
}

func TestClassTemplate_StartInWeek(t *testing.T) {
	tmpl := validTemplate() // Monday 18:00

	weekStart := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC) // a Monday
	start, err := tmpl.StartInWeek(weekStart, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC), start)

	tmpl.Weekday = 2 // Wednesday
	tmpl.StartTime = "09:30"
	start, err = tmpl.StartInWeek(weekStart, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 6, 9, 30, 0, 0, time.UTC), start)
}

func TestClassTemplate_StartInWeek_Timezone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Belgrade")
	require.NoError(t, err)

	tmpl := validTemplate()
	weekStart := time.Date(2024, 3, 4, 0, 0, 0, 0, loc)
	start, err := tmpl.StartInWeek(weekStart, loc)
	require.NoError(t, err)

	assert.Equal(t, time.UTC, start.Location())
	assert.Equal(t, time.Date(2024, 3, 4, 18, 0, 0, 0, loc).UTC(), start)
}

func TestClassTemplate_StartInWeek_Invalid(t *testing.T) {
	tmpl := validTemplate()
	tmpl.StartTime = "noon"
	_, err := tmpl.StartInWeek(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.True(t, errors.Is(err, ErrTemplateInvalid))
}

func TestWeekStartOf(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name string
		in   time.Time
	}{
		{"monday itself", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"monday evening", time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC)},
		{"midweek", time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, monday, WeekStartOf(tc.in, time.UTC))
		})
	}
}

func TestClassInstance_HasMemberAndEnd(t *testing.T) {
	inst := ClassInstance{
		StartDatetime:   time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Capacity:        20,
		SpotsLeft:       18,
		BookedMemberIDs: []string{"m1", "m2"},
	}

	assert.True(t, inst.HasMember("m1"))
	assert.False(t, inst.HasMember("m3"))
	assert.Equal(t, time.Date(2024, 3, 4, 19, 0, 0, 0, time.UTC), inst.EndDatetime())
}
