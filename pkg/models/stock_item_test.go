package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowOperationsIsStrictOnStatus(t *testing.T) {
	cases := []struct {
		status   string
		operable bool
	}{
		{"stokta", true},
		{"devredildi", false},
		{"arizali", false},
		{"hurda", false},
		{"eski_durum", false},
		{"", false},
	}

	for _, tc := range cases {
		item := StockItem{Status: tc.status}
		assert.Equal(t, tc.operable, item.AllowOperations(), "status %q", tc.status)
	}
}

func TestTransformToStockItemKeepsRawStatus(t *testing.T) {
	fr := FlatStockRecord{
		ID:       12,
		Title:    "Eski kayıt",
		Category: "bilinmeyen",
		Status:   "eski_durum",
	}

	item, err := fr.TransformToStockItem()
	assert.NoError(t, err)
	assert.Equal(t, "eski_durum", item.Status)
	assert.Equal(t, "envanter", item.Category)
	assert.False(t, item.AllowOperations())
}
