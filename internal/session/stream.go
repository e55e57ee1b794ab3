package session

import (
	"context"
	"fmt"
	"slices"
)

// StreamClients returns the token ids subscribed to a stream.
func (r *Registry) StreamClients(ctx context.Context, streamName string) ([]string, error) {
	return r.streams.FetchClients(ctx, streamName)
}

// Broadcast enqueues data once to every subscriber of the stream,
// skipping the exclude list.
func (r *Registry) Broadcast(ctx context.Context, streamName string, data []byte, exclude []string) error {
	exists, err := r.streams.Exists(ctx, streamName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("broadcasting to %s: stream not found", streamName)
	}

	subscribers, err := r.streams.FetchClients(ctx, streamName)
	if err != nil {
		return err
	}
	for _, tokenID := range subscribers {
		if slices.Contains(exclude, tokenID) {
			continue
		}
		if err := r.Enqueue(ctx, tokenID, data); err != nil {
			return err
		}
	}
	return nil
}

// SelectiveBroadcast enqueues data to an explicit recipient list. The
// stream must exist but membership is not checked.
func (r *Registry) SelectiveBroadcast(ctx context.Context, streamName string, data []byte, tokenIDs []string) error {
	exists, err := r.streams.Exists(ctx, streamName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("broadcasting to %s: stream not found", streamName)
	}

	for _, tokenID := range tokenIDs {
		if err := r.Enqueue(ctx, tokenID, data); err != nil {
			return err
		}
	}
	return nil
}
