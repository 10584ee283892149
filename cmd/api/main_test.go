package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"tb-treatment-plans/internal/domain/dosage"
	"tb-treatment-plans/internal/domain/regimens"
)

func TestDeriveCmd_PrintsPlan(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"derive", "--regimen", "I. 2HRZE/4HR", "--weight", "10", "--start", "2024-01-15", "--name", "Juan"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	var got struct {
		FullName      string         `json:"full_name"`
		EndDate       string         `json:"end_date"`
		DosageTotal   map[string]int `json:"dosage_total"`
		FollowUpDates []string       `json:"follow_up_dates"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if got.FullName != "Juan" || got.EndDate != "2024-07-15" || len(got.FollowUpDates) != 13 || got.DosageTotal["H"] != 336 {
		t.Fatalf("unexpected derived plan %+v", got)
	}
}

func TestDerive_Errors(t *testing.T) {
	if _, err := derive(deriveFlags{regimen: "III. unknown", weight: 10, start: "2024-01-15"}); !errors.Is(err, regimens.ErrUnknownRegimen) {
		t.Fatalf("expected ErrUnknownRegimen, got %v", err)
	}
	if _, err := derive(deriveFlags{regimen: "I. 2HRZE/4HR", weight: 3, start: "2024-01-15"}); !errors.Is(err, dosage.ErrWeightOutOfRange) {
		t.Fatalf("expected ErrWeightOutOfRange, got %v", err)
	}
}

func TestDeriveCmd_RequiresFlags(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"derive", "--regimen", "I. 2HRZE/4HR"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected missing flag error")
	}
}
