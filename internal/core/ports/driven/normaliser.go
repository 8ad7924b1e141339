package driven

import "github.com/everydaystudy/golf-db-loader/internal/core/domain"

// Normaliser transforms a raw source element into a canonical course.
type Normaliser interface {
	// Normalise returns the canonical course, or a *domain.ValidationError
	// when the element cannot produce one.
	Normalise(partition domain.Partition, raw domain.RawElement) (*domain.Course, error)
}
