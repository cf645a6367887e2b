package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtAction(t *testing.T) {
	d := AtAction(KindBetting, 3, 2, "Invalid bet amount %d", 30)

	assert.Equal(t, KindBetting, d.Kind)
	assert.Equal(t, 3, d.Hand)
	assert.Equal(t, 2, d.Action)
	assert.Equal(t, "Invalid bet amount 30 at hand 3 (action #2)", d.Message)
	assert.Equal(t, d.Message, d.String())
}

func TestNew(t *testing.T) {
	d := New(KindLedger, 7, "Chip conservation violated at hand %d", 7)

	assert.Equal(t, 0, d.Action)
	assert.Equal(t, "Chip conservation violated at hand 7", d.Message)
}

func TestCountByKind(t *testing.T) {
	diags := []Diagnostic{
		New(KindLedger, 1, "a"),
		New(KindLedger, 2, "b"),
		New(KindField, 2, "c"),
	}

	counts := CountByKind(diags)
	assert.Equal(t, 2, counts[KindLedger])
	assert.Equal(t, 1, counts[KindField])
	assert.Equal(t, 0, counts[KindBetting])

	assert.Equal(t, []Kind{KindLedger, KindField}, SortedKinds(counts))
}

func TestSortedKinds_UnknownKindsLast(t *testing.T) {
	counts := map[Kind]int{"Zeta": 1, KindParse: 2, "Alpha": 1}
	assert.Equal(t, []Kind{KindParse, "Alpha", "Zeta"}, SortedKinds(counts))
}
