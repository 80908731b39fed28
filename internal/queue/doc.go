// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

// Package queue implements the durable job queue and dispatcher.
//
// Three pieces cooperate here:
//
//   - Broker: a Watermill-backed publish/subscribe transport with one topic
//     per recommendation mode. A delivered message is the worker's lease on
//     the job; Ack releases it terminally, Nack returns the job for
//     redelivery. Backends: in-process gochannel and NATS JetStream.
//   - JobStore: the observable lifecycle record for every job, enforcing the
//     monotonic QUEUED -> RUNNING -> (RETRY -> RUNNING)* -> terminal state
//     machine. Backends: in-memory and BadgerDB, both expiring terminal
//     records after a configured TTL.
//   - Dispatcher: the producer-side facade the orchestrator calls. Submit
//     records QUEUED and publishes the job envelope to its mode topic;
//     Status reads the store.
//
// The broker is the single source of truth for job existence between
// processes; the store is a status pointer with bounded lifetime.
package queue
