package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"contract-risk-go/internal/model"
)

func TestClassifierMatchesEachClauseType(t *testing.T) {
	c := NewClassifier()

	cases := []struct {
		text string
		want model.ClauseType
	}{
		{"The buyer shall pay within 30 days of delivery.", model.ClausePaymentTerms},
		{"Either party may terminate this agreement with notice.", model.ClauseTermination},
		{"The vendor shall be liable for all damages arising.", model.ClauseLiability},
		{"All proprietary information shall remain secret.", model.ClauseConfidentiality},
		{"Copyright in the deliverables vests in the client.", model.ClauseIntellectualProperty},
		{"Processing of personal data must comply with GDPR.", model.ClauseDataProtection},
		{"The supplier provides a guarantee of merchantability.", model.ClauseWarranty},
		{"The contractor shall hold harmless the company.", model.ClauseIndemnification},
		{"Neither party is liable for acts of god or force majeure.", model.ClauseLiability}, // liability 优先命中
		{"Events of force majeure suspend performance.", model.ClauseForceMajeure},
		{"The employee agrees to a non-compete covenant.", model.ClauseNonCompete},
		{"This agreement is subject to the applicable law of Delaware.", model.ClauseGoverningLaw},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Classify(tc.text), "text: %s", tc.text)
	}
}

func TestClassifierFirstMatchWins(t *testing.T) {
	c := NewClassifier()

	// 同时包含 payment 与 termination 关键词，payment_terms 优先
	got := c.Classify("Late payment terms apply after termination of services.")
	assert.Equal(t, model.ClausePaymentTerms, got)
}

func TestClassifierCaseInsensitive(t *testing.T) {
	c := NewClassifier()
	assert.Equal(t, model.ClauseConfidentiality, c.Classify("CONFIDENTIAL MATERIALS"))
}

func TestClassifierUnclassified(t *testing.T) {
	c := NewClassifier()
	assert.Equal(t, model.ClauseUnclassified, c.Classify("The parties met for lunch on Tuesday."))
}
