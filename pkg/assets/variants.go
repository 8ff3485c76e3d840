package assets

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Variant names a derived rendition of a stored asset.
type Variant string

const (
	VariantThumbnail Variant = "thumbnail"
	VariantCard      Variant = "card"
	VariantPreview   Variant = "preview"
)

var variantDimensions = map[Variant][2]int{
	VariantThumbnail: {64, 64},
	VariantCard:      {320, 240},
	VariantPreview:   {800, 600},
}

// IsValid reports whether the variant is one of the named renditions.
func (v Variant) IsValid() bool {
	_, ok := variantDimensions[v]
	return ok
}

// Dimensions returns the target width and height for the variant.
func (v Variant) Dimensions() (int, int) {
	dims := variantDimensions[v]
	return dims[0], dims[1]
}

// Deriver resolves the URL of a named rendition for a source asset.
type Deriver interface {
	DeriveURL(sourceID uuid.UUID, variant Variant) (string, error)
}

// URLDeriver builds rendition URLs off a static base, memoizing results so
// repeated profile reads skip the formatting work.
type URLDeriver struct {
	baseURL string

	mtx   sync.RWMutex
	cache map[cacheKey]string
}

type cacheKey struct {
	sourceID uuid.UUID
	variant  Variant
}

func NewURLDeriver(baseURL string) *URLDeriver {
	return &URLDeriver{
		baseURL: baseURL,
		cache:   make(map[cacheKey]string),
	}
}

func (d *URLDeriver) DeriveURL(sourceID uuid.UUID, variant Variant) (string, error) {
	if sourceID == uuid.Nil {
		return "", fmt.Errorf("source id is required")
	}
	if !variant.IsValid() {
		return "", fmt.Errorf("unknown asset variant %q", variant)
	}

	key := cacheKey{sourceID: sourceID, variant: variant}
	d.mtx.RLock()
	if url, ok := d.cache[key]; ok {
		d.mtx.RUnlock()
		return url, nil
	}
	d.mtx.RUnlock()

	width, height := variant.Dimensions()
	url := fmt.Sprintf("%s/assets/%s/%s_%dx%d", d.baseURL, sourceID, variant, width, height)

	d.mtx.Lock()
	d.cache[key] = url
	d.mtx.Unlock()
	return url, nil
}
