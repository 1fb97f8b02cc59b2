package template

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Variants(t *testing.T) {
	tpl := Build("Hello there!")
	s, ok := tpl.(*Static)
	require.True(t, ok, "template without placeholders must be *Static, got %T", tpl)
	assert.Equal(t, "Hello there!", s.Render())
	assert.Empty(t, s.Placeholders())

	tpl = Build("Hello {{greet}}! My name is {{name}}, {{greet}}.")
	p, ok := tpl.(*Parameterized)
	require.True(t, ok, "template with placeholders must be *Parameterized, got %T", tpl)
	assert.Equal(t, []string{"greet", "name"}, p.Placeholders())
}

func TestBuild_PlaceholdersArePure(t *testing.T) {
	src := "{{b}} then {{a}} then {{b}} and {{c_1}}"
	first := Build(src).Placeholders()
	second := Build(src).Placeholders()
	assert.Equal(t, []string{"b", "a", "c_1"}, first)
	assert.Equal(t, first, second)

	// Копия: изменение результата не ломает шаблон
	tpl := Build(src)
	names := tpl.Placeholders()
	names[0] = "mutated"
	assert.Equal(t, "b", tpl.Placeholders()[0])
}

func TestParameterized_Render(t *testing.T) {
	tests := []struct {
		name   string
		source string
		params Params
		want   string
	}{
		{
			name:   "one unique placeholder",
			source: "Hello {{greet}}!",
			params: Params{"greet": "World"},
			want:   "Hello World!",
		},
		{
			name:   "two unique placeholders",
			source: "Hello {{greet}}! My name is {{name}}.",
			params: Params{"greet": "World", "name": "Rosie"},
			want:   "Hello World! My name is Rosie.",
		},
		{
			name:   "placeholder used several times",
			source: "Hello {{greet}}! Wait, are you really {{greet}}?",
			params: Params{"greet": "World"},
			want:   "Hello World! Wait, are you really World?",
		},
		{
			name:   "unterminated delimiter passes through",
			source: "Hello {{greet}}! Wait, are you really {{greet?",
			params: Params{"greet": "World"},
			want:   "Hello World! Wait, are you really {{greet?",
		},
		{
			name:   "extra keys are ignored",
			source: "hello {{world}}",
			params: Params{"world": "earth", "moon": "luna"},
			want:   "hello earth",
		},
		{
			name:   "values are not re-scanned",
			source: "{{a}} {{b}}",
			params: Params{"a": "{{b}}", "b": "B"},
			want:   "{{b}} B",
		},
		{
			name: "rendered text is unindented",
			source: `
				Hello {{greet}}!
				Wait, are you really {{greet}}?
			`,
			params: Params{"greet": "World"},
			want:   "Hello World!\nWait, are you really World?\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, ok := Build(tt.source).(*Parameterized)
			require.True(t, ok)

			got, err := tpl.Render(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			injected := false
			for _, v := range tt.params {
				injected = injected || strings.Contains(v, "{{")
			}
			if injected {
				return
			}
			for key := range tt.params {
				assert.NotContains(t, got, "{{"+key+"}}")
			}
		})
	}
}

func TestParameterized_RenderMissingPlaceholder(t *testing.T) {
	tpl := Build("{{first}} and {{second}} and {{third}}").(*Parameterized)

	_, err := tpl.Render(Params{"first": "1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPlaceholder))

	var missing *MissingPlaceholderError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "second", missing.Name, "first missing key in text order")
	assert.Equal(t, "missing parameter: second", err.Error())
}

// Scenario A и B: динамический рендер через Render.
func TestRender(t *testing.T) {
	t.Run("parameterized with params", func(t *testing.T) {
		got, err := Render(Build("hello {{world}}"), Params{"world": "earth"})
		require.NoError(t, err)
		assert.Equal(t, "hello earth", got)
	})

	t.Run("parameterized without params", func(t *testing.T) {
		_, err := Render(Build("hello {{world}}"), nil)
		assert.ErrorIs(t, err, ErrMissingTemplateArgs)
		assert.Contains(t, err.Error(), "world")
	})

	t.Run("parameterized with empty params", func(t *testing.T) {
		_, err := Render(Build("hello {{world}}"), Params{})
		assert.ErrorIs(t, err, ErrMissingPlaceholder)
	})

	t.Run("static without params", func(t *testing.T) {
		got, err := Render(Build("hello"), nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	})

	t.Run("static with params", func(t *testing.T) {
		_, err := Render(Build("hello"), Params{"world": "earth"})
		assert.ErrorIs(t, err, ErrUnexpectedTemplateArgs)
		assert.NotErrorIs(t, err, ErrMissingTemplateArgs)
	})

	t.Run("nil template", func(t *testing.T) {
		_, err := Render(nil, nil)
		assert.ErrorIs(t, err, ErrNilTemplate)
	})
}

func TestCombine(t *testing.T) {
	t1 := Build("hello {{name}}")
	t2 := Build("{{fruit}} flavor")
	t3 := Build("good {{occasion}}")

	two := Combine(t1, t2)
	assert.Equal(t, []string{"name", "fruit"}, two.Placeholders())
	got, err := Render(two, Params{"name": "Rosie", "fruit": "apple"})
	require.NoError(t, err)
	assert.Equal(t, "hello Rosie\napple flavor", got)

	three := Combine(t1, t2, t3)
	got, err = Render(three, Params{"name": "Rosie", "fruit": "apple", "occasion": "day"})
	require.NoError(t, err)
	assert.Equal(t, "hello Rosie\napple flavor\ngood day", got)
}

// Рендер комбинации равен конкатенации рендеров частей.
func TestCombine_EqualsJoinedRenders(t *testing.T) {
	t1 := Build("Dear {{name}},")
	t2 := Build("your {{item}} is ready, {{name}}.")
	params := Params{"name": "Ada", "item": "order"}

	combined := Combine(t1, t2)
	assert.Equal(t, []string{"name", "item"}, combined.Placeholders(), "duplicates collapse")

	left, err := Render(t1, params)
	require.NoError(t, err)
	right, err := Render(t2, params)
	require.NoError(t, err)

	got, err := Render(combined, params)
	require.NoError(t, err)
	assert.Equal(t, left+"\n"+right, got)
}

func TestCombine_Static(t *testing.T) {
	combined := Combine(Build("first"), Empty(), Build("last"))
	s, ok := combined.(*Static)
	require.True(t, ok)
	assert.Equal(t, "first\n\nlast", s.Render())
}
