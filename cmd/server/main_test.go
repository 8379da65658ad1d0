package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	want := map[string]bool{
		"serve":              false,
		"migrate":            false,
		"create-super-admin": false,
		"purge-tokens":       false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		require.Truef(t, found, "missing command %q", name)
	}

	var subs []string
	for _, c := range migrateCmd.Commands() {
		subs = append(subs, c.Name())
	}
	require.ElementsMatch(t, []string{"up", "down", "version"}, subs)
}

func TestCreateSuperAdmin_RequiresFlags(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"create-super-admin", "--username", "root"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "required flag"), err.Error())
}
