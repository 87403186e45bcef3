package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndonesianSpell(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "nol"},
		{1, "satu"},
		{10, "sepuluh"},
		{11, "sebelas"},
		{15, "lima belas"},
		{20, "dua puluh"},
		{99, "sembilan puluh sembilan"},
		{100, "seratus"},
		{101, "seratus satu"},
		{250, "dua ratus lima puluh"},
		{1000, "seribu"},
		{1500, "seribu lima ratus"},
		{2000, "dua ribu"},
		{11000, "sebelas ribu"},
		{100000, "seratus ribu"},
		{1000000, "satu juta"},
		{1200000, "satu juta dua ratus ribu"},
		{1001001, "satu juta seribu satu"},
		{2000000000, "dua miliar"},
		{3000000000000, "tiga triliun"},
		{-5000, "min lima ribu"},
	}

	sp, err := SpellerFor("id")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := sp.Spell(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnglishSpell(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "zero"},
		{13, "thirteen"},
		{40, "forty"},
		{42, "forty-two"},
		{105, "one hundred five"},
		{1200000, "one million two hundred thousand"},
	}

	sp, err := SpellerFor("en")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := sp.Spell(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpell_OutOfRange(t *testing.T) {
	for _, locale := range []string{"id", "en"} {
		sp, err := SpellerFor(locale)
		require.NoError(t, err)

		_, err = sp.Spell(maxSpellable + 1)
		assert.ErrorIs(t, err, ErrOutOfRange, locale)
	}
}

func TestSpellerFor_Unsupported(t *testing.T) {
	_, err := SpellerFor("fr")
	assert.ErrorIs(t, err, ErrUnsupportedLocale)
}
