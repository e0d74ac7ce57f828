package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/premigrate/internal/buildinfo"
	"github.com/tphakala/premigrate/internal/runtime"
)

func TestRootCommand_Subcommands(t *testing.T) {
	t.Cleanup(viper.Reset)

	root := RootCommand(runtime.New(&buildinfo.Context{Version: "v1.0.0"}))
	assert.Equal(t, "v1.0.0", root.Version)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "reconcile", "locations"}, names)

	migrate, _, err := root.Find([]string{"migrate"})
	require.NoError(t, err)
	assert.NotNil(t, migrate.Flags().Lookup("force"))
}

func TestRootCommand_FlagsBindToConfigKeys(t *testing.T) {
	t.Cleanup(viper.Reset)

	root := RootCommand(runtime.New(&buildinfo.Context{}))
	require.NoError(t, root.PersistentFlags().Set("batch-size", "42"))
	require.NoError(t, root.PersistentFlags().Set("tie-break", "created-asc"))

	assert.Equal(t, 42, viper.GetInt("migration.batchsize"))
	assert.Equal(t, "created-asc", viper.GetString("migration.tiebreak"))
}
