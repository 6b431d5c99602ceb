package domain

// CardSource tells how the card image of an artifact set was produced.
type CardSource string

const (
	// CardSourceCropped means the extractor located and cropped the card
	// region; the card image is authoritative.
	CardSourceCropped CardSource = "cropped"

	// CardSourceFullImageFallback means extraction failed and the card image
	// is a verbatim copy of the full raster image.
	CardSourceFullImageFallback CardSource = "full_image_fallback"
)

// CardResult is the outcome of the card extraction stage. Extraction
// failure is a soft degrade, never an error: it yields a fallback result.
type CardResult struct {
	Source CardSource
	Path   string
}

// Cropped returns a result for a successfully cropped card.
func Cropped(path string) CardResult {
	return CardResult{Source: CardSourceCropped, Path: path}
}

// FullImageFallback returns a result for a card replaced by the full image.
func FullImageFallback(path string) CardResult {
	return CardResult{Source: CardSourceFullImageFallback, Path: path}
}

// IsFallback reports whether the card was degraded to the full image.
func (c CardResult) IsFallback() bool {
	return c.Source == CardSourceFullImageFallback
}

// ArtifactSet describes every artifact produced for one ID. It is populated
// while the pipeline runs and never mutated once the request completes.
type ArtifactSet struct {
	ID ArtifactID

	// Model is the model that produced the HTML; empty outside prompt mode.
	Model string

	PromptPath string
	HTMLPath   string
	ImagePath  string
	Card       *CardResult

	// RawResponse is the unprocessed model output (prompt mode, single model).
	RawResponse string

	// Secondaries holds one set per requested model in comparative mode,
	// ordered by model index.
	Secondaries []ArtifactSet
}

// IsComparative reports whether the set came from the multi-model pipeline.
func (s *ArtifactSet) IsComparative() bool {
	return len(s.Secondaries) > 0
}
