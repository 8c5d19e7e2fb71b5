package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }
}

func TestAge(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		birthDate string
		wantAge   int
		wantKnown bool
	}{
		{name: "birthday passed", birthDate: "1990-05-20", wantAge: 34, wantKnown: true},
		{name: "birthday today", birthDate: "1990-06-15", wantAge: 34, wantKnown: true},
		{name: "birthday tomorrow", birthDate: "1990-06-16", wantAge: 33, wantKnown: true},
		{name: "later month", birthDate: "2000-12-01", wantAge: 23, wantKnown: true},
		{name: "born today", birthDate: "2024-06-15", wantAge: 0, wantKnown: true},
		{name: "empty", birthDate: "", wantKnown: false},
		{name: "malformed", birthDate: "20.05.1990", wantKnown: false},
		{name: "impossible date", birthDate: "1990-02-30", wantKnown: false},
		{name: "future", birthDate: "2030-01-01", wantKnown: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			age, known := Age(tt.birthDate, today)
			assert.Equal(t, tt.wantKnown, known)
			assert.Equal(t, tt.wantAge, age)
		})
	}
}

func TestComposeOrdering(t *testing.T) {
	t.Parallel()

	c, err := NewComposer("", fixedClock(2024, time.June, 15))
	require.NoError(t, err)

	window := []Message{
		{Role: RoleUser, Content: "Мне снилась вода"},
		{Role: RoleAssistant, Content: "Вода символизирует эмоции"},
	}
	got := c.Compose(Profile{Name: "Анна", BirthDate: "1990-05-20"}, window, "А теперь снился лес")

	require.Len(t, got, len(window)+2)
	assert.Equal(t, RoleSystem, got[0].Role)
	assert.Contains(t, got[0].Content, "Имя: Анна")
	assert.Contains(t, got[0].Content, "Возраст: 34 лет")
	assert.Equal(t, window[0], got[1])
	assert.Equal(t, window[1], got[2])
	assert.Equal(t, Message{Role: RoleUser, Content: "А теперь снился лес"}, got[3])

	for _, m := range got[1:] {
		assert.NotEqual(t, RoleSystem, m.Role, "only the first entry is a system entry")
	}
}

func TestComposeEmptyWindow(t *testing.T) {
	t.Parallel()

	c, err := NewComposer("", fixedClock(2024, time.June, 15))
	require.NoError(t, err)

	got := c.Compose(Profile{Name: "Иван"}, nil, "сон")
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Content, "Возраст: неизвестен")
	assert.Equal(t, "сон", got[1].Content)
}

func TestComposeDoesNotTruncate(t *testing.T) {
	t.Parallel()

	c, err := NewComposer("", nil)
	require.NoError(t, err)

	long := make([]rune, 20000)
	for i := range long {
		long[i] = 'я'
	}
	got := c.Compose(Profile{Name: "X"}, nil, string(long))
	assert.Equal(t, string(long), got[len(got)-1].Content)
}

func TestComposeIsDeterministic(t *testing.T) {
	t.Parallel()

	c, err := NewComposer("", fixedClock(2024, time.January, 1))
	require.NoError(t, err)

	p := Profile{Name: "Анна", BirthDate: "1990-05-20"}
	w := []Message{{Role: RoleUser, Content: "a"}}
	assert.Equal(t, c.Compose(p, w, "b"), c.Compose(p, w, "b"))
}

func TestComposeDefaultName(t *testing.T) {
	t.Parallel()

	c, err := NewComposer("", nil)
	require.NoError(t, err)
	assert.Contains(t, c.System(Profile{Name: "  "}), "Имя: "+DefaultName)
}

func TestNewComposerOverride(t *testing.T) {
	t.Parallel()

	c, err := NewComposer("Толкователь для {{.Name}}{{if .AgeKnown}}, {{.Age}}{{end}}", fixedClock(2024, time.June, 15))
	require.NoError(t, err)
	assert.Equal(t, "Толкователь для Анна, 34", c.System(Profile{Name: "Анна", BirthDate: "1990-01-01"}))

	_, err = NewComposer("{{.Unknown}}", nil)
	assert.Error(t, err)

	_, err = NewComposer("{{if}}", nil)
	assert.Error(t, err)
}
