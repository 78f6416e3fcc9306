package replay

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"livelist/core/list"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const script = `{
	"children": [["a", "b"], ["c"], ["d", "e"]],
	"steps": [
		{"op": "remove_child", "position": 1},
		{"op": "insert_child", "position": 1, "items": ["x", "y"]},
		{"op": "move_child", "from": 0, "to": 2},
		{"op": "insert", "child": 0, "position": 1, "key": "z"},
		{"op": "set", "child": 2, "position": 0, "key": "A"},
		{"op": "reload", "children": [["q"]]},
		{"op": "insert", "child": 0, "position": 1, "key": "r"}
	]
}`

func TestRun_Script(t *testing.T) {
	s, err := Decode(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, s.Steps, 7)

	records, err := Run(s)
	require.NoError(t, err)

	require.NotEmpty(t, records)
	assert.Equal(t, 0, records[0].Step)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, records[0].List)
	assert.Equal(t, []list.Change{list.Reloaded()}, records[0].Changes)

	byStep := map[int][]string{}
	for _, r := range records {
		byStep[r.Step] = r.List
	}
	assert.Equal(t, []string{"a", "b", "d", "e"}, byStep[1])
	assert.Equal(t, []string{"a", "b", "x", "y", "d", "e"}, byStep[2])
	assert.Equal(t, []string{"x", "y", "d", "e", "a", "b"}, byStep[3])
	assert.Equal(t, []string{"x", "z", "y", "d", "e", "a", "b"}, byStep[4])
	assert.Equal(t, []string{"x", "z", "y", "d", "e", "A", "b"}, byStep[5])
	assert.Equal(t, []string{"q"}, byStep[6])
	assert.Equal(t, []string{"q", "r"}, records[len(records)-1].List)
}

func TestRun_Errors(t *testing.T) {
	_, err := Run(&Script{
		Children: [][]string{{"a"}},
		Steps:    []Step{{Op: "remove", Child: 3}},
	})
	assert.ErrorIs(t, err, list.ErrOutOfRange)

	_, err = Run(&Script{
		Children: [][]string{{"a"}},
		Steps:    []Step{{Op: "shuffle"}},
	})
	assert.ErrorIs(t, err, ErrUnknownOp)

	_, err = Decode(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	records, err := Run(&Script{Children: [][]string{{"a"}}, Steps: []Step{{Op: OpInsert, Position: 1, Key: "b"}}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var last Record
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &last))
	assert.Equal(t, 1, last.Step)
	assert.Equal(t, []string{"a", "b"}, last.List)
	assert.Equal(t, []list.Change{list.Inserted(1)}, last.Changes)
}
