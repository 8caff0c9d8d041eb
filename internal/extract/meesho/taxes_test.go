package meesho

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

func TestParseTaxClause(t *testing.T) {
	tests := []struct {
		name    string
		clause  string
		kinds   []string
		rates   []string
		amounts []string
		sum     string
		wantErr error
	}{
		{
			name:    "single igst",
			clause:  "IGST @3.0% Rs.16.60",
			kinds:   []string{"IGST"},
			rates:   []string{"3.00"},
			amounts: []string{"16.60"},
			sum:     "16.60",
		},
		{
			name:    "cgst and sgst without separator",
			clause:  "CGST @2.5% Rs.9.03SGST @2.5% Rs.9.02",
			kinds:   []string{"CGST", "SGST"},
			rates:   []string{"2.50", "2.50"},
			amounts: []string{"9.03", "9.02"},
			sum:     "18.05",
		},
		{
			name:    "colon form",
			clause:  "IGST @5%: Rs.10.00",
			kinds:   []string{"IGST"},
			rates:   []string{"5.00"},
			amounts: []string{"10.00"},
			sum:     "10.00",
		},
		{
			name:   "empty clause",
			clause: "  ",
			sum:    "0.00",
		},
		{
			name:    "no component",
			clause:  "VAT 5%",
			wantErr: common.ErrFieldNotFound,
		},
		{
			name:    "malformed amount",
			clause:  "IGST @3.0% Rs.1.6.60",
			wantErr: common.ErrMalformedNumeric,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTaxClause(tt.clause)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.kinds))
			for i, c := range got {
				assert.Equal(t, tt.kinds[i], c.Kind)
				assert.Equal(t, tt.rates[i], c.Rate.String())
				assert.Equal(t, tt.amounts[i], c.Amount.String())
			}
			assert.Equal(t, tt.sum, SumTax(got).String())
		})
	}
}
