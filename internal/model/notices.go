// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Fixed assistant texts. They are configuration constants, never computed
// from a response.
const (
	// DefaultGreeting seeds every new session.
	DefaultGreeting = "Hello! I'm your AI assistant. How can I help you today?\nनमस्कार! मी आपला AI सहाय्यक आहे. मी तुम्हाला कशी मदत करू शकतो?"

	// DefaultNoReply stands in for a reply when the service answered without
	// any reply text.
	DefaultNoReply = "I received the message but got no text back."

	// DefaultApology is shown when an exchange fails for any reason.
	DefaultApology = "Sorry, I'm having trouble connecting to the server. Please try again.\nमाफ करा, सर्व्हरशी जोडणी करण्यात अडचण येत आहे. कृपया पुन्हा प्रयत्न करा."
)
