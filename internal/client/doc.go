// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client implements the HTTP transport to the answering service.
//
// One exchange is one POST of a JSON body {"query": ..., "user_id": ...} to
// the configured endpoint. A successful exchange is a 2xx status whose body
// is a JSON object; the decoded fields are returned untouched so callers can
// decide which of them carries the reply.
//
// The client never retries. Transport failures, non-2xx statuses, oversized
// bodies and bodies that are not JSON objects are all returned as errors.
//
// # Usage
//
//	c := client.New("https://example.com/api/chat").
//	    WithTimeout(30 * time.Second).
//	    WithLogger(log)
//	resp, err := c.Ask(ctx, client.Request{Query: "hi", UserID: sess.ID()})
package client
