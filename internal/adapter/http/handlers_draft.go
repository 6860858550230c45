package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"weightlog/internal/domain"
)

// draftState is the add-entry state a client sends back on every step.
type draftState struct {
	Text       string `json:"text"`
	HasInitial bool   `json:"hasInitial"`
	Selected   int64  `json:"selected"`
}

type draftView struct {
	WeightText       string    `json:"weightText"`
	Invalid          bool      `json:"invalid"`
	HasInitial       bool      `json:"hasInitial"`
	QuickAdjust      bool      `json:"quickAdjust"`
	QuickAdjustSteps []float64 `json:"quickAdjustSteps"`
	State            string    `json:"state"`
	Selected         int64     `json:"selected"`
	SelectedText     string    `json:"selectedText"`
	MaxDate          int64     `json:"maxDate"`
}

func viewDraft(d *domain.EntryDraft) draftView {
	p := d.Picker()
	sel := p.Selected().UnixMilli()
	return draftView{
		WeightText:       d.WeightText,
		Invalid:          d.Invalid,
		HasInitial:       d.HasInitial(),
		QuickAdjust:      d.QuickAdjustAvailable(),
		QuickAdjustSteps: domain.QuickAdjustSteps,
		State:            p.State().String(),
		Selected:         sel,
		SelectedText:     domain.FormatTimestamp(sel, p.Location()),
		MaxDate:          p.MaxDate().UnixMilli(),
	}
}

func (s *Server) resumeDraft(st draftState) *domain.EntryDraft {
	return s.weight.ResumeDraft(st.Text, st.HasInitial, st.Selected)
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	d, err := s.weight.NewDraft(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDraft(d))
}

func (s *Server) handleDraftAdjust(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		draftState
		Delta float64 `json:"delta"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d := s.resumeDraft(body.draftState)
	if err := d.Adjust(body.Delta); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDraft(d))
}

func (s *Server) handleDraftDate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		draftState
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d := s.resumeDraft(body.draftState)
	if _, err := d.Picker().PickDate(body.Year, time.Month(body.Month), body.Day); err != nil {
		writePickerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDraft(d))
}

func (s *Server) handleDraftTime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		draftState
		Hour   int `json:"hour"`
		Minute int `json:"minute"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d := s.resumeDraft(body.draftState)
	if _, err := d.Picker().PickTime(body.Hour, body.Minute); err != nil {
		writePickerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDraft(d))
}

func (s *Server) handleDraftSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body draftState
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d := s.resumeDraft(body)
	id, next, err := s.weight.SaveDraft(r.Context(), d)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "draft": viewDraft(next)})
}

func writePickerError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrFutureTimestamp) {
		writeDomainError(w, err)
		return
	}
	writeError(w, http.StatusBadRequest, err)
}
