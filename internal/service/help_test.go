package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
)

func TestBuildHelp_Defaults(t *testing.T) {
	want := "Environment:" +
		"\n  app          The web application." +
		"\n  registry     Active application registry." +
		"\n  request      Active request object." +
		"\n  root         Root of the default resource tree." +
		"\n  root_factory Default root factory used to create `root`."

	assert.Equal(t, want, BuildHelp(nil))
}

func TestBuildHelp_CustomVariables(t *testing.T) {
	help := BuildHelp([]env.Item{
		{Name: "zeta", Value: 1.5},
		{Name: "alpha", Value: "text"},
		{Name: "setup", Value: func(*env.Env) {}},
		{Name: "db_password", Value: "hunter2"},
	})

	assert.Contains(t, help, "\n\nCustom Variables:"+
		"\n  alpha        \"text\""+
		"\n  db_password  [REDACTED]"+
		"\n  zeta         1.5")
	assert.NotContains(t, help, "setup")
	assert.NotContains(t, help, "hunter2")
}
