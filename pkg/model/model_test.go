package model

import (
	"errors"
	"strings"
	"testing"
)

func TestFormulaValidate(t *testing.T) {
	cases := []struct {
		name    string
		formula Formula
		wantErr error
	}{
		{"valid", Formula{ID: "f", Index: 1, LaTeX: `x^2`}, nil},
		{"empty latex", Formula{ID: "f", Index: 1}, ErrEmptyLaTeX},
		{"whitespace latex", Formula{ID: "f", Index: 1, LaTeX: "   "}, ErrEmptyLaTeX},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.formula.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestTemplateValidate(t *testing.T) {
	cases := []struct {
		name     string
		template Template
		wantErr  error
	}{
		{"valid", Template{ID: "t", Name: "Quadratic", LaTeX: `ax^2`}, nil},
		{"empty name", Template{ID: "t", LaTeX: `x`}, ErrEmptyName},
		{"empty latex", Template{ID: "t", Name: "x"}, ErrEmptyLaTeX},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.template.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewID(t *testing.T) {
	id := NewID("formula")
	if !strings.HasPrefix(id, "formula-") {
		t.Errorf("NewID prefix: %q", id)
	}
	if len(id) != len("formula-")+8 {
		t.Errorf("NewID length: %q", id)
	}
	if NewID("formula") == id {
		t.Error("NewID returned the same id twice")
	}
}
