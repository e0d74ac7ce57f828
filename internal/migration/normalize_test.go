package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Leeds Crown Court":                "leeds crown court",
		"  LEEDS   crown court ":           "leeds crown court",
		"Kingston-upon-Thames Crown Court": "kingston upon thames crown court",
		"Café Court!":                      "cafe court",
		"102 Petty France":                 "102 petty france",
		"":                                 "",
		"--":                               "",
	}
	for input, want := range tests {
		assert.Equal(t, want, normalizeName(input), input)
	}
}

func TestCoreLocationName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "leeds", coreLocationName("leeds crown court"))
	assert.Equal(t, "leeds", coreLocationName("leeds magistrates court"))
	assert.Equal(t, "default", coreLocationName("default court"))
	assert.Equal(t, "birmingham", coreLocationName("birmingham"))
	// A bare suffix is kept whole.
	assert.Equal(t, "court", coreLocationName("court"))
	assert.Equal(t, "crown court", coreLocationName("crown court"))
}

func TestNaturalKey_String(t *testing.T) {
	t.Parallel()

	key := naturalKey{table: "booking_participant", conds: map[string]any{
		"participant_id": "p-1",
		"booking_id":     "b-1",
	}}
	assert.Equal(t, "booking_participant|booking_id=b-1|participant_id=p-1", key.String())
	assert.Equal(t, "courts|name=Leeds", keyOf("courts", "name", "Leeds").String())
}
