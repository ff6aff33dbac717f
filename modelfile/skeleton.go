package modelfile

import "fmt"

// Skeleton returns a starter model file. It parses and builds as is:
// two states, a transition each way and one example check.
func Skeleton(name string) []byte {
	return fmt.Appendf(nil, `name: %s
description: Describe the scenario here.
root: start

# List every state with its labels and variables.
states:
  - name: start
    props: [idle]
    vars: {count: 0}
  - name: end
    props: [done]
    vars: {count: 1}

# "to" takes a single state or a list.
transitions:
  - {from: start, to: end}
  - {from: end, to: start}

# Named propositions are JavaScript expressions over the state's
# variables. name, props and has(label) are also in scope.
props:
  finished: "count > 0 && has('done')"

checks:
  - name: can-finish
    description: Some path reaches a finished state.
    formula: "EF finished"
    expect: true
`, name)
}
