package lexicon

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/localrivet/rivet/internal/labels"
	"github.com/localrivet/rivet/internal/logger"
	"github.com/localrivet/rivet/internal/riv"
	"github.com/localrivet/rivet/internal/telemetry"
)

// ErrInvalidID is returned when a saved-vector id is not a UUID.
var ErrInvalidID = errors.New("lexicon: invalid vector id")

// Key namespaces inside a Store
const (
	labelPrefix  = "label:"
	vectorPrefix = "vector:"
)

// Lexicon caches word labels and holds saved vectors on top of a Store.
// Labels are deterministic, so a cached label always equals a freshly
// generated one with the same parameters.
type Lexicon struct {
	store     Store
	generator *labels.Generator
	metrics   *telemetry.MetricsCollector
	logger    *slog.Logger
}

// New creates a Lexicon. metrics and logger may be nil.
func New(store Store, generator *labels.Generator, metrics *telemetry.MetricsCollector, log *slog.Logger) *Lexicon {
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	return &Lexicon{
		store:     store,
		generator: generator,
		metrics:   metrics,
		logger:    logger.Component(log, "lexicon"),
	}
}

// Generator returns the label generator.
func (l *Lexicon) Generator() *labels.Generator {
	return l.generator
}

// Label returns the label for word, generating and storing it on a miss.
// A stored label with a different dimensionality is regenerated.
func (l *Lexicon) Label(word string) (*riv.RIV, error) {
	key := labelPrefix + word

	stored, err := l.store.Get(key)
	switch {
	case err == nil && stored.Dims() == l.generator.Dims():
		l.metrics.IncrementCounter(telemetry.MetricLexiconHits, 1)
		return stored, nil
	case err == nil:
		l.logger.Warn("Regenerating label with stale dimensionality",
			"word", word, "stored", stored.Dims(), "want", l.generator.Dims())
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	l.metrics.IncrementCounter(telemetry.MetricLexiconMisses, 1)
	var label *riv.RIV
	l.metrics.Time(telemetry.MetricLabelTime, func() {
		label, err = l.generator.Label(word)
	})
	if err != nil {
		return nil, err
	}
	l.metrics.IncrementCounter(telemetry.MetricLabelsGenerated, 1)

	if err := l.store.Put(key, label); err != nil {
		return nil, fmt.Errorf("failed to store label for %q: %w", word, err)
	}
	l.updateSize()
	l.logger.Debug("Generated label", "word", word, "entries", label.Count())
	return label, nil
}

// Forget removes the cached label for word.
func (l *Lexicon) Forget(word string) error {
	if err := l.store.Delete(labelPrefix + word); err != nil {
		return err
	}
	l.updateSize()
	return nil
}

// Save stores v under a new id and returns the id.
func (l *Lexicon) Save(v *riv.RIV) (string, error) {
	id := uuid.New().String()
	if err := l.store.Put(vectorPrefix+id, v); err != nil {
		return "", fmt.Errorf("failed to save vector: %w", err)
	}
	l.metrics.IncrementCounter(telemetry.MetricVectorsSaved, 1)
	l.updateSize()
	return id, nil
}

// Load returns the vector saved under id.
func (l *Lexicon) Load(id string) (*riv.RIV, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return l.store.Get(vectorPrefix + id)
}

// Clear removes all labels and saved vectors and reports how many entries
// were removed.
func (l *Lexicon) Clear() (int, error) {
	n, err := l.store.Clear()
	if err != nil {
		return 0, err
	}
	l.metrics.SetGauge(telemetry.MetricLexiconSize, 0)
	l.logger.Info("Cleared lexicon", "removed", n)
	return n, nil
}

// Size returns the number of stored entries.
func (l *Lexicon) Size() (int, error) {
	return l.store.Count()
}

func (l *Lexicon) updateSize() {
	n, err := l.store.Count()
	if err != nil {
		l.logger.Warn("Failed to count lexicon entries", "error", err)
		return
	}
	l.metrics.SetGauge(telemetry.MetricLexiconSize, float64(n))
}
