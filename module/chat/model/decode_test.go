package model

import (
	"testing"

	"PHistory/tools/errs"
)

func TestDecodeIntoWeakTypes(t *testing.T) {
	// JSON numbers arrive as float64; the decoder has to narrow them.
	m := map[string]any{
		"conversation_id": "c1",
		"id":              float64(42),
		"date":            float64(1700000000),
		"out":             false,
		"kind":            "media",
		"media": map[string]any{
			"type": "photo",
			"ref":  "blob://x",
		},
	}
	msg, err := DecodeInto[RawMessage](m)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.ID != 42 || msg.ConversationID != "c1" {
		t.Fatalf("decoded = %+v", msg)
	}
	if msg.Media == nil || msg.Media.Type != "photo" {
		t.Fatalf("media = %+v", msg.Media)
	}
}

func TestDecodeIntoNilMap(t *testing.T) {
	_, err := DecodeInto[RawMessage](nil)
	if err == nil {
		t.Fatal("nil map must fail")
	}
	if errs.CodeOf(err) != errs.CodeDecodeFailed {
		t.Fatalf("code = %d", errs.CodeOf(err))
	}
}
