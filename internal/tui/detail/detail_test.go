package detail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/budgettree/internal/budget"
	"github.com/rshade/budgettree/internal/tree"
)

func TestFields(t *testing.T) {
	rec, err := budget.ParseRecord([]byte(`
Zweckbestimmung: Bezüge
Betrag: "1234.5"
Gruppenbezeichnung: Personal
Titelbezeichnung: Bezüge der Beamten
Anmerkung: ~
`))
	require.NoError(t, err)
	n := &tree.Node{Name: rec.Label(), Attributes: rec}

	fields := Fields(n)
	require.Len(t, fields, 5)
	assert.Equal(t, Field{Key: "Titelbezeichnung", Value: "Bezüge der Beamten"}, fields[0])
	assert.Equal(t, "Gruppenbezeichnung", fields[1].Key)
	assert.Equal(t, Field{Key: "Anmerkung", Value: ""}, fields[2])
	assert.Equal(t, Field{Key: "Betrag", Value: "1.234,5 €"}, fields[3])
	assert.Equal(t, "Zweckbestimmung", fields[4].Key)

	out := Render(n)
	assert.Contains(t, out, "Titelbezeichnung    Bezüge der Beamten")
	assert.Contains(t, out, "Betrag              1.234,5 €")
}

func TestFields_Empty(t *testing.T) {
	assert.Nil(t, Fields(nil))
	assert.Nil(t, Fields(&tree.Node{Name: "Root"}))
	assert.Empty(t, Render(&tree.Node{}))
}

func TestFormat_InvalidAmount(t *testing.T) {
	assert.Equal(t, "N/A", format(budget.AmountKey, "n/a"))
}
