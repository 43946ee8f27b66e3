package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsonsearch/internal/ir"
)

func TestBind(t *testing.T) {
	params := map[string]ir.Value{
		"age_1":    ir.Int(18),
		"status_2": ir.List{ir.Str("A"), ir.Str("B"), ir.Str("C")},
		"owner_3":  ir.EntityRef{Entity: "owner", ID: ir.Int(7)},
		"empty_4":  ir.List{},
		"name_5":   ir.Str("%ann%"),
	}

	tests := []struct {
		name     string
		text     string
		question string
		dollar   string
		wantArgs []any
	}{
		{
			name:     "scalar",
			text:     "age >= :age_1",
			question: "age >= ?",
			dollar:   "age >= $1",
			wantArgs: []any{int64(18)},
		},
		{
			name:     "list expands",
			text:     "status IN (:status_2) AND age = :age_1",
			question: "status IN (?, ?, ?) AND age = ?",
			dollar:   "status IN ($1, $2, $3) AND age = $4",
			wantArgs: []any{"A", "B", "C", int64(18)},
		},
		{
			name:     "empty list binds null",
			text:     "status NOT IN (:empty_4)",
			question: "status NOT IN (NULL)",
			dollar:   "status NOT IN (NULL)",
			wantArgs: nil,
		},
		{
			name:     "entity binds its id",
			text:     "owner_id = :owner_3",
			question: "owner_id = ?",
			dollar:   "owner_id = $1",
			wantArgs: []any{int64(7)},
		},
		{
			name:     "quoted text is left alone",
			text:     "note <> ':age_1' AND \"odd:col\" LIKE :name_5 AND x = 'it''s :age_1'",
			question: "note <> ':age_1' AND \"odd:col\" LIKE ? AND x = 'it''s :age_1'",
			dollar:   "note <> ':age_1' AND \"odd:col\" LIKE $1 AND x = 'it''s :age_1'",
			wantArgs: []any{"%ann%"},
		},
		{
			name:     "casts are left alone",
			text:     "created::date = :age_1",
			question: "created::date = ?",
			dollar:   "created::date = $1",
			wantArgs: []any{int64(18)},
		},
		{
			name:     "repeated parameter binds twice",
			text:     ":age_1 + :age_1",
			question: "? + ?",
			dollar:   "$1 + $2",
			wantArgs: []any{int64(18), int64(18)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args, err := Bind(tt.text, params, PlaceholderQuestion)
			require.NoError(t, err)
			assert.Equal(t, tt.question, q)
			assert.Equal(t, tt.wantArgs, args)

			q, args, err = Bind(tt.text, params, PlaceholderDollar)
			require.NoError(t, err)
			assert.Equal(t, tt.dollar, q)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBind_MissingParameter(t *testing.T) {
	_, _, err := Bind("age = :age_9", map[string]ir.Value{}, PlaceholderQuestion)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":age_9")
}

func TestBind_UnterminatedQuote(t *testing.T) {
	q, args, err := Bind("x = 'open :age_1", map[string]ir.Value{}, PlaceholderQuestion)
	require.NoError(t, err)
	assert.Equal(t, "x = 'open :age_1", q)
	assert.Empty(t, args)
}

func TestBinder_TextTimes(t *testing.T) {
	day, err := ir.ParseValue("2020-01-01", ir.TypeDate)
	require.NoError(t, err)
	at, err := ir.ParseValue("2020-06-15T08:30:00Z", ir.TypeDateTime)
	require.NoError(t, err)

	params := map[string]ir.Value{
		"day_1":  day,
		"at_2":   at,
		"days_3": ir.List{day},
		"ref_4":  ir.EntityRef{Entity: "event", ID: day},
	}
	text := "day = :day_1 AND at >= :at_2 AND day IN (:days_3) AND ref = :ref_4"

	b := &binder{style: PlaceholderQuestion, textTimes: true}
	_, err = b.rewrite(text, params)
	require.NoError(t, err)
	assert.Equal(t, []any{"2020-01-01", "2020-06-15T08:30:00Z", "2020-01-01", "2020-01-01"}, b.args)

	_, args, err := Bind(text, params, PlaceholderDollar)
	require.NoError(t, err)
	require.Len(t, args, 4)
	assert.IsType(t, time.Time{}, args[0])
	assert.IsType(t, time.Time{}, args[1])
}
