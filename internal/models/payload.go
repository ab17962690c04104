// Package models defines the stable button-payload encoding.
//
// Payload strings round-trip through transport button payloads, so the
// encoding below is a stable private contract between the dispatcher and the
// transport adapters. Payloads are parsed exactly once, at the dispatcher
// edge, into the typed Event variants; the transition engine never sees the
// raw strings.
package models

import (
	"fmt"
	"strings"
)

// Control payloads.
const (
	PayloadSkip    = "wzd_skip"
	PayloadBack    = "wzd_back"
	PayloadCancel  = "wzd_cancel"
	PayloadConfirm = "wzd_confirm"
	PayloadDone    = "wzd_done"
)

// Choice payload prefixes.
const (
	payloadColorPrefix    = "select_color_"
	payloadSizePrefix     = "toggle_size_"
	payloadGroupPrefix    = "select_group_"
	payloadCategoryPrefix = "select_category_"
	payloadSuggestDesc    = "suggest_desc"
)

// ColorPayload encodes a preset color selection as "select_color_<NAME>_<HEX>".
func ColorPayload(name, hex string) string {
	return payloadColorPrefix + name + "_" + hex
}

// SizePayload encodes a size toggle as "toggle_size_<SIZE>".
func SizePayload(s Size) string {
	return payloadSizePrefix + string(s)
}

// GroupPayload encodes a spotlight group selection as "select_group_<ID>".
func GroupPayload(id string) string {
	return payloadGroupPrefix + id
}

// CategoryPayload encodes a category selection as "select_category_<ID>".
func CategoryPayload(id string) string {
	return payloadCategoryPrefix + id
}

// SuggestDescriptionPayload encodes the description-suggestion request.
func SuggestDescriptionPayload() string {
	return payloadSuggestDesc
}

// ParsePayload decodes a button payload into a typed event. Unknown payloads
// return an error; transports should surface these as unhandled taps rather
// than forwarding them to the engine.
func ParsePayload(payload string) (Event, error) {
	switch payload {
	case PayloadSkip:
		return ControlInput{Control: ControlSkip}, nil
	case PayloadBack:
		return ControlInput{Control: ControlBack}, nil
	case PayloadCancel:
		return ControlInput{Control: ControlCancel}, nil
	case PayloadConfirm:
		return ControlInput{Control: ControlConfirm}, nil
	case PayloadDone:
		return ControlInput{Control: ControlDone}, nil
	case payloadSuggestDesc:
		return ChoiceInput{Choice: SuggestDescription{}}, nil
	}

	switch {
	case strings.HasPrefix(payload, payloadColorPrefix):
		rest := strings.TrimPrefix(payload, payloadColorPrefix)
		// Color names may contain underscores; the hex part never does.
		sep := strings.LastIndex(rest, "_")
		if sep <= 0 || sep == len(rest)-1 {
			return nil, fmt.Errorf("malformed color payload: %q", payload)
		}
		return ChoiceInput{Choice: ColorChoice{Name: rest[:sep], Hex: rest[sep+1:]}}, nil
	case strings.HasPrefix(payload, payloadSizePrefix):
		size := Size(strings.TrimPrefix(payload, payloadSizePrefix))
		if size == "" {
			return nil, fmt.Errorf("malformed size payload: %q", payload)
		}
		return ChoiceInput{Choice: SizeToggle{Size: size}}, nil
	case strings.HasPrefix(payload, payloadGroupPrefix):
		id := strings.TrimPrefix(payload, payloadGroupPrefix)
		if id == "" {
			return nil, fmt.Errorf("malformed group payload: %q", payload)
		}
		return ChoiceInput{Choice: GroupChoice{ID: id}}, nil
	case strings.HasPrefix(payload, payloadCategoryPrefix):
		id := strings.TrimPrefix(payload, payloadCategoryPrefix)
		if id == "" {
			return nil, fmt.Errorf("malformed category payload: %q", payload)
		}
		return ChoiceInput{Choice: CategoryChoice{ID: id}}, nil
	}

	return nil, fmt.Errorf("unknown payload: %q", payload)
}
