package domain

import "time"

// EntryDraft is the working state of the add-entry flow: the weight text the
// user is editing and the timestamp picker. Nothing is persisted until the
// draft is resolved and saved.
type EntryDraft struct {
	WeightText string
	// Invalid is set when Resolve rejected the weight text and cleared by
	// the next adjustment.
	Invalid bool

	picker     *TimestampPicker
	hasInitial bool
}

// NewEntryDraft starts a draft from the latest saved weight (nil when the
// store is empty) and the current instant.
func NewEntryDraft(latest *WeightEntry, clock Clock, loc *time.Location) *EntryDraft {
	d := &EntryDraft{picker: NewTimestampPicker(clock, loc)}
	if latest != nil {
		d.WeightText = FormatWeight(latest.Weight)
		d.hasInitial = true
	}
	return d
}

// ResumeEntryDraft rebuilds a draft whose state was kept by the caller.
func ResumeEntryDraft(text string, hasInitial bool, selectedMs int64, clock Clock, loc *time.Location) *EntryDraft {
	return &EntryDraft{
		WeightText: text,
		picker:     ResumeTimestampPicker(clock, loc, selectedMs),
		hasInitial: hasInitial,
	}
}

// Picker returns the draft's timestamp picker.
func (d *EntryDraft) Picker() *TimestampPicker { return d.picker }

// HasInitial reports whether the draft was seeded from a saved weight.
func (d *EntryDraft) HasInitial() bool { return d.hasInitial }

// QuickAdjustAvailable reports whether the +/- buttons should be shown.
func (d *EntryDraft) QuickAdjustAvailable() bool {
	return d.WeightText != "" || d.hasInitial
}

// Adjust applies one of QuickAdjustSteps to the weight text.
func (d *EntryDraft) Adjust(delta float64) error {
	next, err := QuickAdjust(d.WeightText, delta)
	if err != nil {
		return err
	}
	d.WeightText = next
	d.Invalid = false
	return nil
}

// Resolve parses the weight text and commits the picker. A weight that is not
// a number greater than zero sets Invalid and returns ErrInvalidWeight; the
// picker is not committed in that case.
func (d *EntryDraft) Resolve() (float64, int64, error) {
	w, ok := ParseWeight(d.WeightText)
	if !ok || !ValidWeight(w) {
		d.Invalid = true
		return 0, 0, ErrInvalidWeight
	}
	d.Invalid = false
	return w, d.picker.Commit(), nil
}
