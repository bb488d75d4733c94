package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	allowed := []string{"-c", "-config"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"separate value", []string{"-c", "conf.json", "-a", "localhost"}, []string{"-c", "conf.json"}},
		{"equals form", []string{"-config=alt.json", "-a", "x"}, []string{"-config=alt.json"}},
		{"double dash matches", []string{"--config", "x.json"}, []string{"--config", "x.json"}},
		{"order preserved", []string{"-config=a.json", "-c", "b.json"}, []string{"-config=a.json", "-c", "b.json"}},
		{"unknown ignored", []string{"-x", "1", "--y=2", "positional"}, []string{}},
		{"trailing flag without value", []string{"-c"}, []string{"-c"}},
		{"next token is a flag", []string{"-c", "-d"}, []string{"-c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, allowed))
		})
	}
}

func TestConfigFile(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-d", "dsn", "-c", "server.json"}
	assert.Equal(t, "server.json", ConfigFile())

	os.Args = []string{"bin", "-config=other.json"}
	assert.Equal(t, "other.json", ConfigFile())

	os.Args = []string{"bin", "-d", "dsn"}
	assert.Equal(t, "", ConfigFile())
}
