package recorder

import "MarketBrief/internal/model"

// NoopRecorder is a no-op implementation used when no data directory is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Append(_ model.Sample) error       { return nil }
func (n *NoopRecorder) Last() (model.Sample, bool, error) { return model.Sample{}, false, nil }
func (n *NoopRecorder) Samples() ([]model.Sample, error)  { return nil, nil }
func (n *NoopRecorder) Close() error                      { return nil }
