package metadata

import (
	"testing"
)

func TestNewItemStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid aktif", "aktif", false},
		{"valid stokta", "stokta", false},
		{"valid hurda", "hurda", false},
		{"invalid empty", "", true},
		{"invalid unknown", "kayip", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewItemStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewItemStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeItemStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ItemStatus
	}{
		{"known value kept", "arizali", ItemStatusFaulty},
		{"unknown falls back", "kayip", ItemStatusActive},
		{"empty falls back", "", ItemStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeItemStatus(tt.input); got != tt.expected {
				t.Errorf("NormalizeItemStatus(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeStockStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected StockStatus
	}{
		{"known value kept", "devredildi", StockStatusAssigned},
		{"unknown falls back", "bilinmiyor", StockStatusPooled},
		{"empty falls back", "", StockStatusPooled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeStockStatus(tt.input); got != tt.expected {
				t.Errorf("NormalizeStockStatus(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAllowOperations(t *testing.T) {
	if !StockStatusPooled.AllowOperations() {
		t.Error("pooled items must allow operations")
	}
	for _, status := range []StockStatus{StockStatusAssigned, StockStatusFaulty, StockStatusScrapped} {
		if status.AllowOperations() {
			t.Errorf("%s must not allow operations", status)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Category
	}{
		{"known value kept", "lisans", CategoryLicense},
		{"unknown falls back", "donanim", CategoryInventory},
		{"empty falls back", "", CategoryInventory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCategory(tt.input); got != tt.expected {
				t.Errorf("NormalizeCategory(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
