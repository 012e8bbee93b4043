package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestCurrenciesCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"currencies"})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "BTC") || !strings.Contains(out.String(), "USD") {
		t.Errorf("expected currency lists, got %q", out.String())
	}
}

func TestConvertCmdRejectsUnknownCurrency(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"convert", "1", "XYZ", "USD"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected error for unknown currency")
	}
}

func TestConvertCmdArgCount(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"convert", "1", "BTC"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected error for missing argument")
	}
}
