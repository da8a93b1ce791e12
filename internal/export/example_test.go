// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export_test

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jeranaias/askterm/internal/export"
	"github.com/jeranaias/askterm/internal/model"
)

// ExampleExport demonstrates exporting a conversation to Markdown.
func ExampleExport() {
	started := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	snap := &export.Snapshot{
		SessionID: "chat_example_1748770200000",
		Title:     "Hello World",
		StartedAt: started,
		Messages: []model.Message{
			model.NewMessageAt(model.RoleUser, model.KindUser, "How do I print in Python?", started),
			model.NewMessageAt(model.RoleAssistant, model.KindReply, "```python\nprint(\"Hello, World!\")\n```", started.Add(time.Second)),
		},
	}

	dir, err := os.MkdirTemp("", "askterm-export")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	opts := export.DefaultOptions()
	opts.OutputDir = dir
	opts.Now = func() time.Time { return started }

	path, err := export.Export(snap, "md", opts)
	if err != nil {
		fmt.Printf("Export failed: %v\n", err)
		return
	}

	fmt.Println(filepath.Base(path))
	// Output:
	// conversation_Hello_World_20250601_093000.md
}
