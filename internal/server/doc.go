// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a local answering service for development and tests.
//
// It speaks the same wire contract as a production answering service: a POST
// with {"query", "user_id"} answered by a JSON object. Behavior knobs make it
// easy to exercise every client path.
//
// # Endpoints
//
//   - POST /           - answer a query
//   - POST /api/chat   - same handler, conventional path
//   - GET  /health     - liveness and uptime
//   - GET  /stats      - request counters
//
// # Knobs
//
//   - WithReplyField: which field carries the reply ("answer", "message",
//     "text"), or "none" to answer with an object that has no reply text
//   - WithStatus: force a non-2xx status for every answer
//   - WithDelay: hold each answer, to observe pending state
//   - WithToken: require a bearer token
//
// # Usage
//
//	srv := server.NewServer("127.0.0.1:8787").WithDelay(time.Second)
//	err := srv.Serve(ctx)
package server
