package assets

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveURLPerVariant(t *testing.T) {
	deriver := NewURLDeriver("https://cdn.example.com")
	id := uuid.New()

	thumb, err := deriver.DeriveURL(id, VariantThumbnail)
	require.NoError(t, err)
	assert.Contains(t, thumb, id.String())
	assert.Contains(t, thumb, "thumbnail_64x64")

	card, err := deriver.DeriveURL(id, VariantCard)
	require.NoError(t, err)
	assert.Contains(t, card, "card_320x240")
	assert.NotEqual(t, thumb, card)
}

func TestDeriveURLMemoizes(t *testing.T) {
	deriver := NewURLDeriver("https://cdn.example.com")
	id := uuid.New()

	first, err := deriver.DeriveURL(id, VariantPreview)
	require.NoError(t, err)
	second, err := deriver.DeriveURL(id, VariantPreview)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, deriver.cache, 1)
}

func TestDeriveURLRejectsBadInput(t *testing.T) {
	deriver := NewURLDeriver("https://cdn.example.com")

	_, err := deriver.DeriveURL(uuid.Nil, VariantThumbnail)
	require.Error(t, err)

	_, err = deriver.DeriveURL(uuid.New(), Variant("banner"))
	require.Error(t, err)
}
