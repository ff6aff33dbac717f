package modelfile_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfielding/ctlcheck/kripke"
	"github.com/rfielding/ctlcheck/modelfile"
	"github.com/rfielding/ctlcheck/models"
)

const labyrinthYAML = `
name: labyrinth
description: Three rooms.
root: s0
states:
  - name: s0
    props: [entrance]
    vars: {room: 0}
  - name: s1
    props: [hall]
    vars: {room: 1}
  - name: s2
    props: [exit]
    vars: {room: 2}
transitions:
  - {from: s0, to: s1}
  - {from: s1, to: [s2]}
  - from: s2
    to: s1
props:
  isGoal: "room == 2"
checks:
  - name: goal-reachable
    formula: "EF isGoal"
    expect: true
  - name: goal-avoidable
    formula: "AG !isGoal"
    expect: false
  - name: hall-from-exit
    formula: "EX hall"
    from: s2
`

func verdicts(m *kripke.Model) map[string]bool {
	out := make(map[string]bool)
	for _, r := range m.Verify(nil) {
		out[r.Check.Name] = r.Holds
	}
	return out
}

func TestParseAndBuild(t *testing.T) {
	f, err := modelfile.Parse([]byte(labyrinthYAML))
	require.NoError(t, err)
	assert.Equal(t, "labyrinth", f.Name)
	assert.Equal(t, modelfile.Targets{"s1"}, f.Transitions[2].To)
	assert.Equal(t, []string{"isGoal"}, f.PropNames())
	assert.Equal(t, map[string]bool{"goal-reachable": true, "goal-avoidable": false}, f.Expectations())

	m, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, 3, m.Graph.Len())
	assert.Equal(t, 3, m.Graph.EdgeCount())

	root, ok := m.Graph.Root()
	require.True(t, ok)
	assert.Equal(t, "s0", m.Graph.Name(root))

	assert.Equal(t, map[string]bool{
		"goal-reachable": true,
		"goal-avoidable": false,
		"hall-from-exit": true,
	}, verdicts(m))

	checks := m.Formulas()
	require.NotNil(t, checks[2].Start)
	assert.Equal(t, "s2", m.Graph.Name(*checks[2].Start))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labyrinth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(labyrinthYAML), 0o644))

	f, err := modelfile.Load(path)
	require.NoError(t, err)
	assert.Len(t, f.States, 3)

	_, err = modelfile.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := modelfile.Parse([]byte("name: x\nstates: [{name: a}]\nbogus: 1\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want string
	}{
		"no name":         {"states: [{name: a}]", "missing model name"},
		"no states":       {"name: x", "no states"},
		"duplicate state": {"name: x\nstates: [{name: a}, {name: a}]", `duplicate state "a"`},
		"bad root":        {"name: x\nroot: b\nstates: [{name: a}]", `root "b"`},
		"bad source":      {"name: x\nstates: [{name: a}]\ntransitions: [{from: b, to: a}]", `unknown source "b"`},
		"bad target":      {"name: x\nstates: [{name: a}]\ntransitions: [{from: a, to: [a, c]}]", `unknown target "c"`},
		"empty formula":   {"name: x\nstates: [{name: a}]\nchecks: [{name: c}]", `check "c" has no formula`},
		"duplicate check": {"name: x\nstates: [{name: a}]\nchecks: [{name: c, formula: a}, {name: c, formula: a}]", `duplicate check "c"`},
		"bad check start": {"name: x\nstates: [{name: a}]\nchecks: [{name: c, formula: a, from: z}]", `unknown start "z"`},
		"empty prop":      {"name: x\nstates: [{name: a}]\nprops: {p: \"\"}", `prop "p"`},
		"reserved label":  {"name: x\nstates: [{name: a, props: [\"true\"]}]", `label "true" is reserved`},
		"reserved prop":   {"name: x\nstates: [{name: a}]\nprops: {\"false\": \"1 == 1\"}", `prop "false" is reserved`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := modelfile.Parse([]byte(tc.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, modelfile.ErrInvalidFile))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	t.Run("formula syntax", func(t *testing.T) {
		f, err := modelfile.Parse([]byte("name: x\nstates: [{name: a}]\nchecks: [{name: c, formula: \"EF (a\"}]"))
		require.NoError(t, err)
		_, err = f.Build()
		var se *kripke.SyntaxError
		assert.True(t, errors.As(err, &se))
		assert.Contains(t, err.Error(), `check "c"`)
	})

	t.Run("unknown name", func(t *testing.T) {
		f, err := modelfile.Parse([]byte("name: x\nstates: [{name: a, props: [isGoal]}]\nchecks: [{name: c, formula: \"EF isGaol\"}]"))
		require.NoError(t, err)
		_, err = f.Build()
		assert.ErrorIs(t, err, kripke.ErrUnknownProp)
		assert.ErrorContains(t, err, `"isGaol"`)

		resolve, err := f.Resolver()
		require.NoError(t, err)
		_, err = kripke.Parse("EF isGaol", resolve)
		assert.ErrorIs(t, err, kripke.ErrUnknownProp)
		_, err = kripke.Parse("EF isGoal", resolve)
		assert.NoError(t, err)
	})

	t.Run("javascript syntax", func(t *testing.T) {
		f, err := modelfile.Parse([]byte("name: x\nstates: [{name: a}]\nprops: {p: \"room ==\"}"))
		require.NoError(t, err)
		_, err = f.Build()
		assert.ErrorContains(t, err, `prop "p"`)
	})
}

func TestPropEvaluation(t *testing.T) {
	doc := `
name: props
states:
  - {name: a, props: [red], vars: {x: 1, label: hi}}
  - {name: b}
transitions:
  - {from: a, to: b}
  - {from: b, to: b}
props:
  hasX: "typeof x !== 'undefined'"
  red: "has('red') && name === 'a'"
  greeting: "label + '!' === 'hi!'"
  notBool: "x"
  throws: "undefinedFunction()"
checks:
  - {name: hasX, formula: hasX}
  - {name: red, formula: red}
  - {name: greeting, formula: greeting}
  - {name: notBool, formula: notBool}
  - {name: throws, formula: throws}
  - {name: x-left-behind, formula: "EX hasX"}
`
	f, err := modelfile.Parse([]byte(doc))
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m, err := f.Build(modelfile.WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{
		"hasX":          true,
		"red":           true,
		"greeting":      true,
		"notBool":       false,
		"throws":        false,
		"x-left-behind": false,
	}, verdicts(m))
	assert.Contains(t, logs.String(), "prop evaluation failed")
	assert.Contains(t, logs.String(), "prop=throws")
}

func TestPropDeclarationsDoNotLeak(t *testing.T) {
	doc := `
name: decls
states:
  - {name: goal, vars: {room: 2}}
transitions:
  - {from: goal, to: goal}
props:
  atGoal: "let r = room; r == 2"
  firstRun: "var seen = typeof seen === 'undefined' ? 0 : seen + 1; seen == 0"
checks:
  - {name: let, formula: "atGoal & EX atGoal & AX atGoal"}
  - {name: var, formula: "firstRun & EX firstRun & AG firstRun"}
`
	f, err := modelfile.Parse([]byte(doc))
	require.NoError(t, err)
	m, err := f.Build()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.Equal(t, map[string]bool{"let": true, "var": true}, verdicts(m), "run %d", i)
	}
}

func TestConcurrentVerify(t *testing.T) {
	f, err := modelfile.Parse([]byte(labyrinthYAML))
	require.NoError(t, err)
	m, err := f.Build()
	require.NoError(t, err)

	want := verdicts(m)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, verdicts(m))
		}()
	}
	wg.Wait()
}

func TestSkeleton(t *testing.T) {
	f, err := modelfile.Parse(modelfile.Skeleton("demo"))
	require.NoError(t, err)
	assert.Equal(t, "demo", f.Name)

	m, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"can-finish": true}, verdicts(m))
	assert.Equal(t, map[string]bool{"can-finish": true}, f.Expectations())
}

func TestQuotedLabels(t *testing.T) {
	doc := `
name: quoted
states:
  - {name: a, props: [start]}
  - {name: b, props: [is-goal, EX]}
transitions:
  - {from: a, to: b}
checks:
  - {name: dashed, formula: 'EF "is-goal"', expect: true}
  - {name: keyword, formula: 'EX "EX"', expect: true}
`
	f, err := modelfile.Parse([]byte(doc))
	require.NoError(t, err)
	m, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"dashed": true, "keyword": true}, verdicts(m))

	data, err := modelfile.FromModel(m, nil).Marshal()
	require.NoError(t, err)
	back, err := modelfile.Parse(data)
	require.NoError(t, err, string(data))
	m2, err := back.Build()
	require.NoError(t, err, string(data))
	assert.Equal(t, verdicts(m), verdicts(m2))
}

func TestFromModelRoundTrip(t *testing.T) {
	for _, name := range models.Names() {
		t.Run(name, func(t *testing.T) {
			orig := models.All()[name]()
			data, err := modelfile.FromModel(orig, models.Expressions(name)).Marshal()
			require.NoError(t, err)

			f, err := modelfile.Parse(data)
			require.NoError(t, err, string(data))
			m, err := f.Build()
			require.NoError(t, err)

			assert.Equal(t, orig.Graph.Len(), m.Graph.Len())
			assert.Equal(t, orig.Graph.EdgeCount(), m.Graph.EdgeCount())
			assert.Equal(t, verdicts(orig), verdicts(m))
		})
	}
}
