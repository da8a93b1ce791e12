// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"bytes"
	"encoding/json"

	"github.com/jeranaias/askterm/internal/client"
)

// replyFields are tried in order; the first usable value wins.
var replyFields = []string{"answer", "message", "text"}

// ReplyFields returns the candidate reply fields in precedence order.
func ReplyFields() []string {
	out := make([]string, len(replyFields))
	copy(out, replyFields)
	return out
}

// ExtractReply returns the first usable reply value in precedence order.
//
// Strings count when non-empty. Numbers count when non-zero and keep their
// JSON spelling. true counts as "true". null, false, zero, empty strings,
// objects and arrays are skipped.
func ExtractReply(resp client.Response) (string, bool) {
	for _, field := range replyFields {
		raw, ok := resp[field]
		if !ok {
			continue
		}
		if text, ok := replyText(raw); ok {
			return text, true
		}
	}
	return "", false
}

func replyText(raw json.RawMessage) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}

	switch val := v.(type) {
	case string:
		return val, val != ""
	case json.Number:
		f, err := val.Float64()
		if err != nil || f == 0 {
			return "", false
		}
		return val.String(), true
	case bool:
		if val {
			return "true", true
		}
	}
	return "", false
}
