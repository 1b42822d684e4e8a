package cli

import "testing"

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"version", "sync", "run", "sweep", "list", "runs", "serve"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"config", "database-path", "sitemap-path", "verbose"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag --%s not registered", name)
		}
	}
}
