package domain_test

import (
	"errors"
	"testing"
	"time"

	"weightlog/internal/domain"
)

func TestEntryDraft_NoPriorWeight(t *testing.T) {
	d := domain.NewEntryDraft(nil, fixedClock{now: pickerNow}, time.UTC)
	if d.WeightText != "" {
		t.Fatalf("expected empty text, got %q", d.WeightText)
	}
	if d.QuickAdjustAvailable() {
		t.Fatal("quick adjust must be hidden without text or prior weight")
	}
	d.WeightText = "1"
	if !d.QuickAdjustAvailable() {
		t.Fatal("quick adjust must show once text is entered")
	}
}

func TestEntryDraft_QuickAdjustScenario(t *testing.T) {
	latest := &domain.WeightEntry{ID: 3, Weight: 150.0, Timestamp: pickerNow.Add(-24 * time.Hour).UnixMilli()}
	d := domain.NewEntryDraft(latest, fixedClock{now: pickerNow}, time.UTC)

	if d.WeightText != "150.0" {
		t.Fatalf("initial text = %q; want 150.0", d.WeightText)
	}
	if !d.QuickAdjustAvailable() {
		t.Fatal("expected quick adjust with prior weight")
	}
	d.WeightText = ""
	if !d.QuickAdjustAvailable() {
		t.Fatal("prior weight keeps quick adjust visible")
	}
	d.WeightText = "150.0"

	if err := d.Adjust(0.1); err != nil {
		t.Fatal(err)
	}
	if d.WeightText != "150.1" {
		t.Fatalf("after +0.1 got %q", d.WeightText)
	}
	if err := d.Adjust(1.0); err != nil {
		t.Fatal(err)
	}
	if d.WeightText != "151.1" {
		t.Fatalf("after +1.0 got %q", d.WeightText)
	}
}

func TestEntryDraft_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"valid", "72.4", false},
		{"zero", "0", true},
		{"negative", "-4", true},
		{"empty", "", true},
		{"not a number", "heavy", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := domain.NewEntryDraft(nil, fixedClock{now: pickerNow}, time.UTC)
			d.WeightText = tc.text

			w, ts, err := d.Resolve()
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidWeight) {
					t.Fatalf("expected ErrInvalidWeight, got %v", err)
				}
				if !d.Invalid {
					t.Fatal("expected error state")
				}
				if d.Picker().State() != domain.PickerIdle {
					t.Fatal("picker must be untouched")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w != 72.4 {
				t.Fatalf("weight = %v", w)
			}
			if ts != pickerNow.UnixMilli() {
				t.Fatalf("timestamp = %d; want %d", ts, pickerNow.UnixMilli())
			}
		})
	}
}

func TestEntryDraft_AdjustClearsError(t *testing.T) {
	d := domain.NewEntryDraft(nil, fixedClock{now: pickerNow}, time.UTC)
	d.WeightText = "0"
	if _, _, err := d.Resolve(); err == nil {
		t.Fatal("expected error")
	}
	if err := d.Adjust(1.0); err != nil {
		t.Fatal(err)
	}
	if d.Invalid {
		t.Fatal("adjust must clear the error state")
	}
	if d.WeightText != "1.0" {
		t.Fatalf("got %q", d.WeightText)
	}
}

func TestResumeEntryDraft(t *testing.T) {
	sel := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC).UnixMilli()
	d := domain.ResumeEntryDraft("81.0", true, sel, fixedClock{now: pickerNow}, time.UTC)
	if !d.HasInitial() || d.WeightText != "81.0" {
		t.Fatalf("unexpected draft %+v", d)
	}
	if got := d.Picker().Selected().UnixMilli(); got != sel {
		t.Fatalf("selected = %d; want %d", got, sel)
	}
}
