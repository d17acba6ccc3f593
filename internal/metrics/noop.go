package metrics

// NoopRecorder discards all events.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (*NoopRecorder) IncUserRegistered() {}
func (*NoopRecorder) IncLoginSucceeded() {}
func (*NoopRecorder) IncLoginFailed()    {}
func (*NoopRecorder) IncArticleCreated() {}
func (*NoopRecorder) IncArticleUpdated() {}
func (*NoopRecorder) IncArticleDeleted() {}
