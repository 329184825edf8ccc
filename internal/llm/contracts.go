package llm

import (
	"context"

	"github.com/beanvault/coffee-journal/internal/scan"
)

// ExtractRequest carries normalized OCR text from one scanned bag.
type ExtractRequest struct {
	Text string
}

// FieldExtractor is the interface the scan pipeline depends on. The raw JSON
// returned alongside the fields is kept for logging/debugging; callers must
// treat an error as "the model contributed nothing", never as fatal.
type FieldExtractor interface {
	ExtractLabelFields(ctx context.Context, req ExtractRequest) (scan.LabelFields, []byte, error)
}
