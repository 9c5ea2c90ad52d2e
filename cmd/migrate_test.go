// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"testing"
)

func TestMigrateArgs(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr bool
	}{
		{args: nil},
		{args: []string{"up"}},
		{args: []string{"status"}},
		{args: []string{"check"}},
		{args: []string{"down"}},
		{args: []string{"down", "3"}},
		{args: []string{"down", "-1"}, wantErr: true},
		{args: []string{"up", "3"}, wantErr: true},
		{args: []string{"sideways"}, wantErr: true},
		{args: []string{"down", "1", "2"}, wantErr: true},
	}

	validate := customValidArgs()

	for _, tt := range tests {
		if err := validate(migrateCmd, tt.args); (err != nil) != tt.wantErr {
			t.Errorf("args %v: expected error %v, got %v", tt.args, tt.wantErr, err)
		}
	}
}
