package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decoded(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func ids(r Result) []any {
	out := make([]any, 0, len(r.Records))
	for _, m := range r.Records {
		out = append(out, m["id"])
	}
	return out
}

func TestFirstArray_NestedEnvelope(t *testing.T) {
	v := decoded(t, `{"a":{"b":{"c":[{"id":1},{"id":2}]}}}`)

	r := FirstArray(v, DefaultBudget())
	assert.False(t, r.Truncated)
	assert.Equal(t, []any{1.0, 2.0}, ids(r))
}

func TestFirstArray_PrefersDataKey(t *testing.T) {
	v := decoded(t, `{"aaa":[{"id":"wrong"}],"data":{"data":{"data":[{"id":"right"}]}}}`)

	r := FirstArray(v, DefaultBudget())
	assert.Equal(t, []any{"right"}, ids(r))
}

func TestFirstArray_DepthBudget(t *testing.T) {
	v := decoded(t, `{"a":{"b":{"c":{"d":[{"id":1}]}}}}`)

	r := FirstArray(v, Budget{MaxDepth: 2})
	assert.True(t, r.Truncated)
	assert.Empty(t, r.Records)

	r = FirstArray(v, Budget{MaxDepth: 4})
	assert.False(t, r.Truncated)
	assert.Len(t, r.Records, 1)
}

func TestFirstArray_NodeBudget(t *testing.T) {
	v := decoded(t, `{"a":{"b":{"c":{"d":[{"id":1}]}}}}`)

	r := FirstArray(v, Budget{MaxNodes: 3})
	assert.True(t, r.Truncated)
	assert.Empty(t, r.Records)
}

func TestTasks_Dispatch(t *testing.T) {
	cases := map[string]struct {
		body string
		want []any
	}{
		"bare array":      {`[{"id":1},{"id":2},"noise"]`, []any{1.0, 2.0}},
		"data array":      {`{"status":"success","data":[{"id":1,"title":"X","status":"DONE"}]}`, []any{1.0}},
		"single record":   {`{"data":{"id":7,"title":"only"}}`, []any{7.0}},
		"wrapped thrice":  {`{"data":{"data":{"data":[{"id":"a"},{"id":"b"}]}}}`, []any{"a", "b"}},
		"no data key":     {`{"result":{"items":[{"id":3}]}}`, []any{3.0}},
		"empty array":     {`[]`, []any{}},
		"empty object":    {`{}`, []any{}},
		"scalar response": {`"ok"`, []any{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := Tasks(decoded(t, tc.body), DefaultBudget())
			assert.Equal(t, tc.want, ids(r))
		})
	}
}

func TestStaff_FiltersAndDeduplicates(t *testing.T) {
	v := decoded(t, `[
		{"id":1,"username":"alice","password":"x"},
		{"id":2,"title":"a task, not a person"},
		{"username":"bob","role":"MANAGER"},
		{"id":3,"username":"","role":"STAFF"},
		{"id":1,"username":"alice-dup","role":"ADMIN"},
		{"username":"bob","password":""},
		{"id":4,"username":"carol","password":null}
	]`)

	r := Staff(v, DefaultBudget())
	var names []string
	for _, m := range r.Records {
		names = append(names, m["username"].(string))
	}
	assert.Equal(t, []string{"alice", "bob", "carol"}, names)
}

func TestStaff_EmptyIDIsStillAnID(t *testing.T) {
	v := decoded(t, `[
		{"id":"","username":"alice","role":"STAFF"},
		{"id":"","username":"bob","role":"STAFF"},
		{"id":null,"username":"carol","role":"STAFF"},
		{"username":"carol","role":"ADMIN"}
	]`)

	r := Staff(v, DefaultBudget())
	var names []string
	for _, m := range r.Records {
		names = append(names, m["username"].(string))
	}
	assert.Equal(t, []string{"alice", "carol"}, names)
}

func TestStaff_CollectsAcrossTree(t *testing.T) {
	v := decoded(t, `{"data":{"managers":[{"id":10,"username":"m","role":"MANAGER"}],
		"teams":{"x":{"members":[{"id":11,"username":"s","role":"STAFF"}]}},
		"single":{"id":12,"username":"solo","password":"p"}}}`)

	r := Staff(v, DefaultBudget())
	assert.ElementsMatch(t, []any{10.0, 11.0, 12.0}, ids(r))
}

func TestStaff_SingleRecordMissingBraces(t *testing.T) {
	v := decoded(t, `{"data":{"id":5,"username":"jdoe","role":"STAFF"}}`)

	r := Staff(v, DefaultBudget())
	require.Len(t, r.Records, 1)
	assert.Equal(t, "jdoe", r.Records[0]["username"])
}

func TestDepartments_Tags(t *testing.T) {
	cases := map[string]struct {
		body string
		want []any
	}{
		"departments key": {`{"status":"success","data":{"departments":[{"id":1,"name":"Ops"},{"foo":"bar"}]}}`, []any{1.0}},
		"typed envelope":  {`{"data":{"type":"departments","data":[{"id":2,"name":"HR"}]}}`, []any{2.0}},
		"untagged":        {`{"data":[{"name":"Sales"}]}`, []any{nil}},
		"depts key":       {`{"depts":[{"id":9}]}`, []any{9.0}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := Departments(decoded(t, tc.body), DefaultBudget())
			assert.Equal(t, tc.want, ids(r))
		})
	}
}
