package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Executable is the minimal interface to *corba.Command, so we can
// wrap if desired before the test
type Executable interface {
	Execute() error
}

func TestSetupEnv(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	cases := []struct {
		args     []string
		env      map[string]string
		expected string
	}{
		{nil, nil, ""},
		{[]string{"--foobar", "bang!"}, nil, "bang!"},
		// make sure reset is good
		{nil, nil, ""},
		// test both variants of the prefix
		{nil, map[string]string{"DEMO_FOOBAR": "good"}, "good"},
		{nil, map[string]string{"DEMOFOOBAR": "silly"}, "silly"},
		// and that cli overrides env...
		{[]string{"--foobar", "important"},
			map[string]string{"DEMO_FOOBAR": "ignored"}, "important"},
	}

	for idx, tc := range cases {
		i := strconv.Itoa(idx)
		// test command that store value of foobar in local variable
		var foo string
		cmd := &cobra.Command{
			Use: "demo",
			RunE: func(cmd *cobra.Command, args []string) error {
				foo = viper.GetString("foobar")
				return nil
			},
		}
		cmd.Flags().String("foobar", "", "Some test value from config")
		PrepareBaseCmd(cmd, "DEMO", "/qwerty/asdfgh") // some missing dir..

		viper.Reset()
		args := append([]string{cmd.Use}, tc.args...)
		err := runWithArgs(cmd, args, tc.env)
		require.Nil(err, i)
		assert.Equal(tc.expected, foo, i)
	}
}

func TestSetupConfig(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	// we pre-create a config file we can refer to in the rest of
	// the test cases.
	cval1 := "fubble"
	conf1 := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(conf1, "config.toml"),
		[]byte("boo = \""+cval1+"\"\n"), 0600))

	cases := []struct {
		args     []string
		env      map[string]string
		expected string
	}{
		{nil, nil, ""},
		// setting on the command line
		{[]string{"--boo", "haha"}, nil, "haha"},
		{[]string{"--home", conf1}, nil, cval1},
		// test both variants of the prefix
		{nil, map[string]string{"RD_BOO": "bang"}, "bang"},
		{nil, map[string]string{"RD_HOME": conf1}, cval1},
		{nil, map[string]string{"RDHOME": conf1}, cval1},
	}

	for idx, tc := range cases {
		i := strconv.Itoa(idx)
		// test command that store value of foobar in local variable
		var foo string
		boo := &cobra.Command{
			Use: "reader",
			RunE: func(cmd *cobra.Command, args []string) error {
				foo = viper.GetString("boo")
				return nil
			},
		}
		boo.Flags().String("boo", "", "Some test value from config")
		PrepareBaseCmd(boo, "RD", "/qwerty/asdfgh") // some missing dir...

		viper.Reset()
		args := append([]string{boo.Use}, tc.args...)
		err := runWithArgs(boo, args, tc.env)
		for k := range tc.env {
			os.Unsetenv(k)
		}
		require.Nil(err, i)
		assert.Equal(tc.expected, foo, i)
	}
}

func TestSetupTrace(t *testing.T) {
	cases := []struct {
		args     []string
		env      map[string]string
		long     bool
		expected string
	}{
		{nil, nil, false, "trace flag = false"},
		{[]string{"--trace"}, nil, true, "trace flag = true"},
		{[]string{"--no-such-flag"}, nil, false, "unknown flag: --no-such-flag"},
		{nil, map[string]string{"DBG_TRACE": "true"}, true, "trace flag = true"},
	}

	for idx, tc := range cases {
		i := strconv.Itoa(idx)
		// test command that store value of foobar in local variable
		trace := &cobra.Command{
			Use: "trace",
			RunE: func(cmd *cobra.Command, args []string) error {
				return errors.Errorf("trace flag = %t", viper.GetBool(TraceFlag))
			},
		}
		PrepareBaseCmd(trace, "DBG", "/qwerty/asdfgh") // some missing dir..

		viper.Reset()
		args := append([]string{trace.Use}, tc.args...)
		stderr, err := runCaptureStderr(trace, args, tc.env)
		for k := range tc.env {
			os.Unsetenv(k)
		}
		require.Error(t, err, i)
		assert.Contains(t, err.Error(), tc.expected, i)
		// a stack trace only comes with the trace flag
		assert.Equal(t, tc.long, strings.Contains(stderr, "setup_test.go"), i)
	}
}

// runCaptureStderr runs cmd through RunWithTrace and returns what was
// written to stderr.
func runCaptureStderr(cmd *cobra.Command, args []string, env map[string]string) (output string, err error) {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		os.Stderr = old
	}()

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	err = runWithArgs(traceExecutable{cmd}, args, env)

	w.Close()
	output = <-outC
	return output, err
}

type traceExecutable struct {
	cmd *cobra.Command
}

func (e traceExecutable) Execute() error {
	return RunWithTrace(context.Background(), e.cmd)
}

// runWithArgs executes the given command with the specified command line args
// and environmental variables set. It returns any error returned from cmd.Execute()
func runWithArgs(cmd Executable, args []string, env map[string]string) error {
	oargs := os.Args
	oenv := map[string]string{}
	// defer returns the environment back to normal
	defer func() {
		os.Args = oargs
		for k, v := range oenv {
			os.Setenv(k, v)
		}
	}()

	// set the args and env how we want them
	os.Args = args
	for k, v := range env {
		// backup old value if there, to restore at end
		ov := os.Getenv(k)
		if ov != "" {
			oenv[k] = ov
		}
		err := os.Setenv(k, v)
		if err != nil {
			return err
		}
	}

	// and finally run the command
	return cmd.Execute()
}
