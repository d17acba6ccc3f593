// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder receives counter events from the services. Implementations
// must be safe for concurrent use.
type Recorder interface {
	IncUserRegistered()
	IncLoginSucceeded()
	IncLoginFailed()
	IncArticleCreated()
	IncArticleUpdated()
	IncArticleDeleted()
}
