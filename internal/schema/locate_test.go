package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	t.Run("header and data with footer", func(t *testing.T) {
		lines := []string{
			"Casos Prováveis por Mês notificação",
			"",
			`"Mês notificação";"11 RO";"33 RJ";"Total"`,
			`"Janeiro";5;10;15`,
			`"Fevereiro";2;-;2`,
			`"Total";7;10;17`,
			`Fonte: Sinan`,
		}

		sec, err := Locate(lines)
		require.NoError(t, err)
		assert.True(t, sec.HeaderFound)
		assert.Equal(t, `"Mês notificação";"11 RO";"33 RJ";"Total"`, sec.Header)
		assert.Equal(t, []string{`"Janeiro";5;10;15`, `"Fevereiro";2;-;2`}, sec.Rows)
	})

	t.Run("missing header derives synthetic one", func(t *testing.T) {
		lines := []string{
			"some preamble",
			`"Janeiro";1;2`,
			`"Fevereiro";3;4`,
		}

		sec, err := Locate(lines)
		require.NoError(t, err)
		assert.False(t, sec.HeaderFound)
		assert.Equal(t, `"Mês notificação";1;2`, sec.Header)
		assert.Len(t, sec.Rows, 2)
		assert.Equal(t, `"Janeiro";1;2`, sec.Rows[0])
	})

	t.Run("unquoted data start", func(t *testing.T) {
		lines := []string{
			"Mes notificacao;RO;RJ",
			"Janeiro;1;2",
		}

		sec, err := Locate(lines)
		require.NoError(t, err)
		assert.True(t, sec.HeaderFound)
		assert.Equal(t, []string{"Janeiro;1;2"}, sec.Rows)
	})

	t.Run("blank lines inside data are skipped", func(t *testing.T) {
		lines := []string{
			`"Mês notificação";"11 RO"`,
			`"Janeiro";1`,
			"",
			`"Março";3`,
			"Notas: blah",
		}

		sec, err := Locate(lines)
		require.NoError(t, err)
		assert.Equal(t, []string{`"Janeiro";1`, `"Março";3`}, sec.Rows)
	})

	t.Run("no data start", func(t *testing.T) {
		lines := []string{"preamble", `"Mês notificação";"11 RO"`, "Fonte: Sinan"}

		_, err := Locate(lines)
		assert.ErrorIs(t, err, ErrNoDataStart)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Locate(nil)
		assert.ErrorIs(t, err, ErrNoDataStart)
	})

	t.Run("data runs to end of file without terminator", func(t *testing.T) {
		lines := []string{
			`"Mês notificação";"35 SP"`,
			`"Janeiro";9`,
			`"Fevereiro";8`,
		}

		sec, err := Locate(lines)
		require.NoError(t, err)
		assert.Len(t, sec.Rows, 2)
	})
}

func TestMatchHeader(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		matched bool
	}{
		{"accented phrasing", `"Mês notificação";"11 RO"`, true},
		{"plain phrasing", "Mes notificacao;RO", true},
		{"short variant", `"Mês";"SP"`, true},
		{"no keyword", `"Janeiro";1;2`, false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := MatchHeader(tt.line)
			assert.Equal(t, tt.matched, ok)
			if ok {
				assert.Equal(t, FieldMonth, field)
			}
		})
	}
}
