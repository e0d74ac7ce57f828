package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReferenceData_Embedded(t *testing.T) {
	ref, err := LoadReferenceData("")
	require.NoError(t, err)

	assert.Equal(t, []string{"Level 1", "Level 2", "Level 3", "Level 4", "Super User"}, ref.Roles)
	assert.Len(t, ref.Regions, 12)
	assert.Equal(t, "Default Court", ref.DefaultLocation.Name)
	assert.Equal(t, "default", ref.DefaultLocation.Code)
	assert.Len(t, ref.RoomAssignments, 22)

	loc, ok := ref.Location("Leeds Youth Court")
	require.True(t, ok)
	assert.Equal(t, "MAGISTRATE", loc.Type)
	assert.Equal(t, "429", loc.Code)
}

func TestReferenceData_LocationOrUnknown(t *testing.T) {
	ref, err := LoadReferenceData("")
	require.NoError(t, err)

	loc := ref.LocationOrUnknown("Harborview Court")
	assert.Equal(t, "Harborview Court", loc.Name)
	assert.Equal(t, "CROWN", loc.Type)
	assert.Equal(t, "Unknown", loc.Code)
}

func TestLoadReferenceData_FileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.yaml")
	content := `
roles: [Admin]
regions: [North]
defaultlocation: {name: Fallback, type: CROWN, code: fb}
locations:
  - {name: Riverside Court, type: CROWN, code: "200"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	ref, err := LoadReferenceData(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin"}, ref.Roles)
	assert.Equal(t, "Fallback", ref.DefaultLocation.Name)
}

func TestLoadReferenceData_RejectsIncompleteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles: []\n"), 0o600))

	_, err := LoadReferenceData(path)
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)
}

func TestReferenceData_WithDefaultLocation(t *testing.T) {
	ref, err := LoadReferenceData("")
	require.NoError(t, err)

	renamed := ref.WithDefaultLocation("Fallback Court")
	assert.Equal(t, "Fallback Court", renamed.DefaultLocation.Name)
	assert.Equal(t, "Default Court", ref.DefaultLocation.Name)
	assert.Same(t, ref, ref.WithDefaultLocation(""))
}
