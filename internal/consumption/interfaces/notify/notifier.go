// Package notify announces published datasets to downstream consumers.
package notify

import "context"

// PublishMessage describes one update workflow outcome.
type PublishMessage struct {
	Dataset  string `json:"dataset"`
	Period   string `json:"period"`
	Records  int    `json:"records"`
	Decision string `json:"decision"`
}

// Notifier sends notifications.
type Notifier interface {
	Notify(ctx context.Context, msg PublishMessage) error
}

// NopNotifier discards notifications.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, PublishMessage) error { return nil }
