package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

func products(skus ...string) []*catalog.Product {
	out := make([]*catalog.Product, 0, len(skus))
	for _, sku := range skus {
		out = append(out, &catalog.Product{SKU: sku})
	}
	return out
}

func skus(ps []*catalog.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.SKU)
	}
	return out
}

func TestNaturalSort(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "numeric runs",
			in:   []string{"A2", "A10", "A1"},
			want: []string{"A1", "A2", "A10"},
		},
		{
			name: "first run decides across prefixes",
			in:   []string{"B3", "A20", "C1"},
			want: []string{"C1", "B3", "A20"},
		},
		{
			name: "numbers beyond int64",
			in:   []string{"X99999999999999999999", "X100000000000000000000", "X5"},
			want: []string{"X5", "X99999999999999999999", "X100000000000000000000"},
		},
		{
			name: "leading zeros",
			in:   []string{"P010", "P9", "P0002"},
			want: []string{"P0002", "P9", "P010"},
		},
		{
			name: "no digits uses collation",
			in:   []string{"banana", "Apple", "cherry"},
			want: []string{"Apple", "banana", "cherry"},
		},
		{
			name: "accents are ignored",
			in:   []string{"ecole", "Étage", "dame"},
			want: []string{"dame", "ecole", "Étage"},
		},
		{
			name: "equal numbers keep input order",
			in:   []string{"B-7", "A-7", "SKU-7b", "SKU-7a"},
			want: []string{"B-7", "A-7", "SKU-7b", "SKU-7a"},
		},
		{
			name: "zero falls back to collation",
			in:   []string{"B0", "A0", "A1"},
			want: []string{"A0", "A1", "B0"},
		},
		{
			name: "empty",
			in:   []string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.NaturalSort(products(tt.in...))
			assert.Equal(t, tt.want, skus(got))
		})
	}
}

func TestNaturalSort_DoesNotMutateInput(t *testing.T) {
	in := products("A2", "A10", "A1")

	out := catalog.NaturalSort(in)

	assert.Equal(t, []string{"A2", "A10", "A1"}, skus(in))
	assert.Equal(t, []string{"A1", "A2", "A10"}, skus(out))
}

func TestNaturalSort_StableForEqualKeys(t *testing.T) {
	first := &catalog.Product{SKU: "same", Name: "first"}
	second := &catalog.Product{SKU: "SAME", Name: "second"}

	out := catalog.NaturalSort([]*catalog.Product{first, second})

	assert.Same(t, first, out[0])
	assert.Same(t, second, out[1])
}
