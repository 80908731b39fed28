// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package queue

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/moviematch/moviematch/internal/models"
)

// Topic prefix for the per-mode job queues.
const topicPrefix = "jobs."

// TopicForMode returns the broker topic a mode's jobs are published to.
// Each mode has its own queue, so a slow mood backlog never delays
// collaborative jobs.
func TopicForMode(mode models.Mode) string {
	return topicPrefix + string(mode)
}

// Topics lists every job topic.
func Topics() []string {
	topics := make([]string, len(models.Modes))
	for i, m := range models.Modes {
		topics[i] = TopicForMode(m)
	}
	return topics
}

// metadata keys on job messages
const (
	metaMode        = "mode"
	metaSubmittedAt = "submitted_at"
)

// Marshal packs a job into a Watermill message. The message UUID is the job
// id, which NATS also uses as the deduplication key.
func Marshal(job *models.Job) (*message.Message, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	msg := message.NewMessage(job.ID, payload)
	msg.Metadata.Set(metaMode, string(job.Mode))
	msg.Metadata.Set(metaSubmittedAt, job.CreatedAt.UTC().Format(time.RFC3339Nano))
	return msg, nil
}

// Unmarshal unpacks a job message and validates the envelope.
func Unmarshal(msg *message.Message) (*models.Job, error) {
	var job models.Job
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job message %s: %w", msg.UUID, err)
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job envelope: %w", err)
	}
	return &job, nil
}
