package app

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestRootCommand(t *testing.T) {
	if RootCmd.Use != "envlink" {
		t.Errorf("expected Use to be 'envlink', got '%s'", RootCmd.Use)
	}
	if RootCmd.Short == "" {
		t.Error("expected Short description to be set")
	}
	if RootCmd.Long == "" {
		t.Error("expected Long description to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	expected := []string{"link", "status", "doctor", "history", "undo", "watch", "bluetooth"}
	found := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		found[cmd.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected command '%s' to be registered", name)
		}
	}
}

func TestRootCommandHasPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "verbose", "quiet", "db"} {
		flag := RootCmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Errorf("expected --%s flag to be registered", name)
			continue
		}
		if flag.Usage == "" {
			t.Errorf("expected --%s flag to have usage text", name)
		}
	}

	if RootCmd.PersistentFlags().ShorthandLookup("v") == nil {
		t.Error("expected -v shorthand")
	}
}

func TestLinkCommandRequiresEnv(t *testing.T) {
	flag := linkCmd.Flags().Lookup("env")
	if flag == nil {
		t.Fatal("expected --env flag")
	}
	if got := flag.Annotations[cobra.BashCompOneRequiredFlag]; len(got) != 1 || got[0] != "true" {
		t.Errorf("expected --env to be required, annotations: %v", flag.Annotations)
	}
}

func TestExecuteLinkWithoutEnvFails(t *testing.T) {
	RootCmd.SetArgs([]string{"link"})
	defer RootCmd.SetArgs(nil)

	err := Execute()
	if err == nil {
		t.Fatal("expected error when --env is missing")
	}
}

func TestBindFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("quiet", false, "")
	flags.String("db", "", "")
	if err := flags.Parse([]string{"--db", "/tmp/custom.db"}); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetDefault("db.path", "/default.db")
	if err := bindFlags(v, flags); err != nil {
		t.Fatalf("bindFlags() failed: %v", err)
	}
	if got := v.GetString("db.path"); got != "/tmp/custom.db" {
		t.Errorf("expected flag value, got %q", got)
	}
	if v.GetBool("quiet") {
		t.Error("unset --quiet should not override default")
	}

	if err := bindFlags(viper.New(), pflag.NewFlagSet("empty", pflag.ContinueOnError)); err == nil {
		t.Error("expected error for unregistered flags")
	}
}
