package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/pdf2csv-api/internal/models"
)

func rec(id, first, last, mobile, address string) models.Record {
	return models.Record{ID: id, FirstName: first, LastName: last, Mobile: mobile, Address: address}
}

func TestFingerprintPrefersMobile(t *testing.T) {
	a := rec("a", "Jane", "Doe", "(04) 1234-5678", "1 Main St")
	b := rec("b", "Completely", "Different", "0412345678", "99 Other Rd")
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintNameAddressFallback(t *testing.T) {
	a := rec("a", "Jane", "Doe", "", "12 High  Street")
	b := rec("b", "JANE", "doe", "", "12 high street")
	require.NotEmpty(t, Fingerprint(a))
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintEmptyWhenNoStrongSignal(t *testing.T) {
	assert.Empty(t, Fingerprint(rec("a", "", "", "", "")))
	assert.Empty(t, Fingerprint(rec("a", "Jane", "Doe", "", "")))
	assert.Empty(t, Fingerprint(rec("a", "", "", "", "12 High Street")))
	// mobile with no digits is no signal either
	assert.Empty(t, Fingerprint(rec("a", "", "", "n/a", "")))
}

func TestRegroupTransitive(t *testing.T) {
	grouping := Regroup([]models.Record{
		rec("a", "Jane", "Doe", "0412 345 678", ""),
		rec("b", "J", "D", "(04)12345678", ""),
		rec("c", "Janet", "Doherty", "0412345678", ""),
	})

	require.Len(t, grouping.Groups, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, grouping.Groups[0].RecordIDs)
	assert.Equal(t, 3, grouping.DuplicateCount())
}

func TestRegroupSingletonsUnassigned(t *testing.T) {
	grouping := Regroup([]models.Record{
		rec("a", "Jane", "Doe", "0412345678", ""),
		rec("b", "John", "Smith", "0499999999", ""),
	})

	assert.Empty(t, grouping.Groups)
	assert.Empty(t, grouping.Assignment)
}

func TestRegroupEmptyFingerprintsNeverGrouped(t *testing.T) {
	grouping := Regroup([]models.Record{
		rec("a", "", "", "", ""),
		rec("b", "", "", "", ""),
		rec("c", "", "", "", ""),
	})

	assert.Empty(t, grouping.Groups)
	assert.Equal(t, 0, grouping.DuplicateCount())
}

func TestRegroupMultipleGroups(t *testing.T) {
	grouping := Regroup([]models.Record{
		rec("a", "", "", "0412345678", ""),
		rec("b", "", "", "0412345678", ""),
		rec("c", "Jane", "Doe", "", "12 High St"),
		rec("d", "Jane", "Doe", "", "12 High St"),
		rec("e", "Solo", "Act", "0477777777", ""),
	})

	require.Len(t, grouping.Groups, 2)
	assert.Equal(t, 4, grouping.DuplicateCount())
	_, soloGrouped := grouping.Assignment["e"]
	assert.False(t, soloGrouped)
}
