package models

import "testing"

func TestParsePayloadControls(t *testing.T) {
	cases := []struct {
		payload string
		want    Control
	}{
		{PayloadSkip, ControlSkip},
		{PayloadBack, ControlBack},
		{PayloadCancel, ControlCancel},
		{PayloadConfirm, ControlConfirm},
		{PayloadDone, ControlDone},
	}
	for _, tc := range cases {
		ev, err := ParsePayload(tc.payload)
		if err != nil {
			t.Fatalf("ParsePayload(%q) error: %v", tc.payload, err)
		}
		ctrl, ok := ev.(ControlInput)
		if !ok || ctrl.Control != tc.want {
			t.Errorf("ParsePayload(%q) = %#v, want ControlInput{%s}", tc.payload, ev, tc.want)
		}
	}
}

func TestParsePayloadChoices(t *testing.T) {
	ev, err := ParsePayload(ColorPayload("Navy_Blue", "#000080"))
	if err != nil {
		t.Fatalf("color payload error: %v", err)
	}
	color, ok := ev.(ChoiceInput).Choice.(ColorChoice)
	if !ok || color.Name != "Navy_Blue" || color.Hex != "#000080" {
		t.Errorf("color choice = %#v, want Navy_Blue/#000080", ev)
	}

	ev, err = ParsePayload(SizePayload("XL"))
	if err != nil {
		t.Fatalf("size payload error: %v", err)
	}
	if toggle, ok := ev.(ChoiceInput).Choice.(SizeToggle); !ok || toggle.Size != "XL" {
		t.Errorf("size choice = %#v, want XL", ev)
	}

	ev, err = ParsePayload(GroupPayload("grp-1"))
	if err != nil {
		t.Fatalf("group payload error: %v", err)
	}
	if grp, ok := ev.(ChoiceInput).Choice.(GroupChoice); !ok || grp.ID != "grp-1" {
		t.Errorf("group choice = %#v, want grp-1", ev)
	}

	ev, err = ParsePayload(CategoryPayload("cat-9"))
	if err != nil {
		t.Fatalf("category payload error: %v", err)
	}
	if cat, ok := ev.(ChoiceInput).Choice.(CategoryChoice); !ok || cat.ID != "cat-9" {
		t.Errorf("category choice = %#v, want cat-9", ev)
	}

	ev, err = ParsePayload(SuggestDescriptionPayload())
	if err != nil {
		t.Fatalf("suggest payload error: %v", err)
	}
	if _, ok := ev.(ChoiceInput).Choice.(SuggestDescription); !ok {
		t.Errorf("suggest choice = %#v, want SuggestDescription", ev)
	}
}

func TestParsePayloadRejectsMalformed(t *testing.T) {
	for _, payload := range []string{"", "bogus", "select_color_Red", "toggle_size_", "select_group_", "select_category_"} {
		if _, err := ParsePayload(payload); err == nil {
			t.Errorf("ParsePayload(%q) succeeded, want error", payload)
		}
	}
}
